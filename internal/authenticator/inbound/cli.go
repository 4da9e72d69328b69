package inbound

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/spf13/pflag"
)

// EnvBackupPassword is read by register when --backup-password is not given.
const EnvBackupPassword = "AUTHBITE_BACKUP_PASSWORD"

// ErrUsage reports a bad command line.
var ErrUsage = errors.New("usage error")

const usage = `usage: authbite <command> [flags]

commands:
  register     --phone <cc-number> [--device-name <name>] [--backup-password <pw>]
  list         [--refresh]
  token        <name> [--output text|json|alfred]
  codes        [--output text|json|alfred]
  device-codes
  sync
  check
  dump-seeds
  issue-token  [--subject <sub>]
  serve        run the HTTP API (default)
`

type issuer interface {
	Generate(subject string) (string, error)
}

// CLI is the command line front end. Results go to Stdout; logs stay on
// whatever the slog default handler writes to.
type CLI struct {
	uc     uc
	issuer issuer
	serve  func(ctx context.Context) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
}

func NewCLI(uc uc, issuer issuer, serve func(ctx context.Context) error) *CLI {
	return &CLI{
		uc:     uc,
		issuer: issuer,
		serve:  serve,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

// ExitCode maps the error returned by Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	}

	if gerr, ok := goerror.As(err); ok {
		return gerr.ExitCode()
	}

	return 1
}

// Run executes the command named by args[0]. No command means serve.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.serve(ctx)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return c.register(ctx, rest)
	case "list":
		return c.list(ctx, rest)
	case "token":
		return c.token(ctx, rest)
	case "codes":
		return c.codes(ctx, rest)
	case "device-codes":
		return c.deviceCodes(ctx, rest)
	case "sync":
		return c.sync(ctx, rest)
	case "check":
		return c.check(ctx, rest)
	case "dump-seeds":
		return c.dumpSeeds(ctx, rest)
	case "issue-token":
		return c.issueToken(rest)
	case "serve":
		if err := c.parse(c.flagSet("serve"), rest); err != nil {
			return err
		}
		return c.serve(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(c.Stdout, usage)
		return nil
	default:
		fmt.Fprint(c.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (c *CLI) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.Stderr, "usage of %s:\n", name)
		fs.PrintDefaults()
	}

	return fs
}

func (c *CLI) parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return nil
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := c.flagSet("register")
	phone := fs.String("phone", "", "phone number as <country code>-<number>")
	deviceName := fs.String("device-name", defaultDeviceName(), "name shown on your other devices")
	password := fs.String("backup-password", "", "backup password, defaults to $"+EnvBackupPassword)
	if err := c.parse(fs, args); err != nil {
		return err
	}

	pw := lo.CoalesceOrEmpty(*password, c.Getenv(EnvBackupPassword))
	if pw == "" {
		fmt.Fprint(c.Stderr, "Type your backup password: ")
		line, err := bufio.NewReader(c.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		pw = strings.TrimSpace(line)
	}

	fmt.Fprintln(c.Stderr, "Approve the request on one of your devices to continue.")

	out, err := c.uc.RegisterDevice(ctx, usecase.RegisterDeviceInput{
		Phone:          *phone,
		DeviceName:     *deviceName,
		BackupPassword: pw,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "Device %q registered. Authy ID: %d Device ID: %d\n", out.DeviceName, out.AuthyID, out.DeviceID)

	return nil
}

func (c *CLI) list(ctx context.Context, args []string) error {
	fs := c.flagSet("list")
	refresh := fs.Bool("refresh", false, "fetch the tokens from the vendor instead of the cache")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	out, err := c.uc.ListTokens(ctx, usecase.ListTokensInput{Refresh: *refresh})
	if err != nil {
		return err
	}

	for _, t := range out.Tokens {
		fmt.Fprintf(c.Stdout, "Name: %q Account type: %q\n", t.Name, t.AccountType)
	}

	return nil
}

func (c *CLI) token(ctx context.Context, args []string) error {
	fs := c.flagSet("token")
	output := fs.StringP("output", "o", string(outputText), "output format: text, json or alfred")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: token takes exactly one service name", ErrUsage)
	}

	format, err := parseOutput(*output)
	if err != nil {
		return err
	}

	out, err := c.uc.TokenCodes(ctx, usecase.TokenCodesInput{Name: fs.Arg(0)})
	if err != nil {
		return err
	}

	return c.printCodes(format, out)
}

func (c *CLI) codes(ctx context.Context, args []string) error {
	fs := c.flagSet("codes")
	output := fs.StringP("output", "o", string(outputText), "output format: text, json or alfred")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	format, err := parseOutput(*output)
	if err != nil {
		return err
	}

	out, err := c.uc.TokenCodes(ctx, usecase.TokenCodesInput{})
	if err != nil {
		return err
	}

	return c.printCodes(format, out)
}

func (c *CLI) deviceCodes(ctx context.Context, args []string) error {
	if err := c.parse(c.flagSet("device-codes"), args); err != nil {
		return err
	}

	out, err := c.uc.DeviceCodes(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "%s (expires in %ds)\n", strings.Join(out.Codes, " "), out.ExpiresIn)

	return nil
}

func (c *CLI) sync(ctx context.Context, args []string) error {
	if err := c.parse(c.flagSet("sync"), args); err != nil {
		return err
	}

	out, err := c.uc.SyncTime(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "Time synced. Offset: %ds (%s)\n", out.Offset, out.Direction)

	return nil
}

func (c *CLI) check(ctx context.Context, args []string) error {
	if err := c.parse(c.flagSet("check"), args); err != nil {
		return err
	}

	if err := c.uc.CheckCurrentDevice(ctx); err != nil {
		return err
	}

	owner, err := c.uc.CheckDeviceKeys(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "Device is valid. Registered to +%d %s\n", owner.CountryCode, owner.Cellphone)

	return nil
}

func (c *CLI) dumpSeeds(ctx context.Context, args []string) error {
	if err := c.parse(c.flagSet("dump-seeds"), args); err != nil {
		return err
	}

	out, err := c.uc.DumpSeeds(ctx)
	if err != nil {
		return err
	}

	for _, s := range out.Seeds {
		fmt.Fprintf(c.Stdout, "Name: %q Secret: %q\n", s.Name, s.Secret)
	}

	return nil
}

func (c *CLI) issueToken(args []string) error {
	fs := c.flagSet("issue-token")
	subject := fs.String("subject", "authbite-cli", "token subject")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	if c.issuer == nil {
		return goerror.NewBusiness("JWT is not configured, set jwt.secret", goerror.CodeFailedPrecondition)
	}

	token, err := c.issuer.Generate(*subject)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Stdout, token)

	return nil
}

type outputFormat string

const (
	outputText   outputFormat = "text"
	outputJSON   outputFormat = "json"
	outputAlfred outputFormat = "alfred"
)

func parseOutput(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case outputText, outputJSON, outputAlfred:
		return f, nil
	default:
		return "", fmt.Errorf("%w: output %s is invalid", ErrUsage, s)
	}
}

type serviceToken struct {
	Service string `json:"service"`
	Token   string `json:"token"`
}

type alfredItem struct {
	Title string `json:"title"`
	Arg   string `json:"arg"`
}

type alfredOutput struct {
	Items []alfredItem `json:"items"`
}

// printCodes writes the computed codes. Tokens that failed were logged by
// the usecase and are left out.
func (c *CLI) printCodes(format outputFormat, out *usecase.TokenCodesOutput) error {
	tokens := lo.FilterMap(out.Items, func(it usecase.TokenCodesItem, _ int) (serviceToken, bool) {
		return serviceToken{Service: it.Name, Token: it.Code}, it.Error == ""
	})

	switch format {
	case outputJSON:
		return c.writeJSON(tokens)
	case outputAlfred:
		return c.writeJSON(alfredOutput{Items: lo.Map(tokens, func(t serviceToken, _ int) alfredItem {
			return alfredItem{Title: t.Service, Arg: t.Token}
		})})
	default:
		for _, t := range tokens {
			fmt.Fprintf(c.Stdout, "Service: %q Token: %q\n", t.Service, t.Token)
		}
		return nil
	}
}

func (c *CLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func defaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "authbite"
	}

	return "authbite on " + host
}
