package keystore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os/exec"
)

// securityItemNotFound is the exit status of `security find-generic-password`
// when no matching item exists.
const securityItemNotFound = 44

// Runner executes an external program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Command stores records in the macOS keychain by shelling out to the
// `security` tool. It avoids the keychain access prompts that linked
// keychain APIs trigger for unsigned binaries.
type Command struct {
	service string
	runner  Runner
}

// NewCommand returns a security-CLI backed store. A nil runner uses ExecRunner.
func NewCommand(service string, runner Runner) *Command {
	if service == "" {
		service = DefaultService
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Command{service: service, runner: runner}
}

func (c *Command) Get(ctx context.Context, key string, out any) error {
	stdout, err := c.runner.Run(ctx, "security", "find-generic-password", "-a", key, "-s", c.service, "-w")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == securityItemNotFound {
			return ErrNotFound
		}
		return backendError("security find", key, err)
	}

	stdout = bytes.TrimSuffix(stdout, []byte("\n"))
	if len(stdout) == 0 {
		return ErrNotFound
	}

	// security prints values containing non-printable bytes (newlines in
	// indented JSON, for instance) as hex.
	if decoded, err := hex.DecodeString(string(stdout)); err == nil {
		stdout = decoded
	}

	return Unmarshal(stdout, out)
}

func (c *Command) Set(ctx context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}

	_, err = c.runner.Run(ctx, "security", "add-generic-password", "-U", "-a", key, "-s", c.service, "-w", string(data))
	if err != nil {
		return backendError("security add", key, err)
	}

	return nil
}

func (c *Command) Close() error {
	return nil
}
