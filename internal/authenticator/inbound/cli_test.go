package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct{}

func (fakeIssuer) Generate(subject string) (string, error) { return "jwt-" + subject, nil }

func newTestCLI(uc *fakeUC, env map[string]string, stdin string) (*CLI, *bytes.Buffer, *bool) {
	served := false
	cli := NewCLI(uc, fakeIssuer{}, func(context.Context) error {
		served = true
		return nil
	})

	var out bytes.Buffer
	cli.Stdout = &out
	cli.Stderr = &bytes.Buffer{}
	cli.Stdin = strings.NewReader(stdin)
	cli.Getenv = func(k string) string { return env[k] }

	return cli, &out, &served
}

func sampleCodes() *usecase.TokenCodesOutput {
	return &usecase.TokenCodesOutput{
		Items: []usecase.TokenCodesItem{
			{Name: "LastPass", Code: "123456", Digits: 6},
			{Name: "Broken", Digits: 6, Error: "failed"},
			{Name: "Digital Ocean", Code: "7654321", Digits: 7},
		},
		ExpiresIn: 10,
	}
}

func TestCLI_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "text",
			args: []string{"token", "last"},
			want: "Service: \"LastPass\" Token: \"123456\"\nService: \"Digital Ocean\" Token: \"7654321\"\n",
		},
		{
			name: "json after the name",
			args: []string{"token", "last", "--output", "json"},
			want: "[\n  {\n    \"service\": \"LastPass\",\n    \"token\": \"123456\"\n  },\n  {\n    \"service\": \"Digital Ocean\",\n    \"token\": \"7654321\"\n  }\n]\n",
		},
		{
			name: "alfred",
			args: []string{"token", "-o", "alfred", "last"},
			want: "{\n  \"items\": [\n    {\n      \"title\": \"LastPass\",\n      \"arg\": \"123456\"\n    },\n    {\n      \"title\": \"Digital Ocean\",\n      \"arg\": \"7654321\"\n    }\n  ]\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &fakeUC{codes: sampleCodes()}
			cli, out, _ := newTestCLI(uc, nil, "")

			require.NoError(t, cli.Run(context.Background(), tt.args))
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, usecase.TokenCodesInput{Name: "last"}, uc.codesIn)
		})
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"nope"},
		{"token"},
		{"token", "a", "b"},
		{"token", "a", "--output", "xml"},
		{"list", "--bogus"},
	} {
		uc := &fakeUC{codes: sampleCodes()}
		cli, _, _ := newTestCLI(uc, nil, "")

		err := cli.Run(context.Background(), args)
		require.ErrorIs(t, err, ErrUsage, args)
		assert.Equal(t, 2, ExitCode(err), args)
		assert.Empty(t, uc.Calls(), args)
	}
}

func TestCLI_Register(t *testing.T) {
	t.Parallel()

	t.Run("password from env", func(t *testing.T) {
		t.Parallel()

		uc := &fakeUC{}
		cli, out, _ := newTestCLI(uc, map[string]string{EnvBackupPassword: "from-env"}, "")

		require.NoError(t, cli.Run(context.Background(), []string{"register", "--phone", "1-5551234567", "--device-name", "laptop"}))
		assert.Equal(t, usecase.RegisterDeviceInput{Phone: "1-5551234567", DeviceName: "laptop", BackupPassword: "from-env"}, uc.registerIn)
		assert.Equal(t, "Device \"laptop\" registered. Authy ID: 12345 Device ID: 321321\n", out.String())
	})

	t.Run("flag wins over env", func(t *testing.T) {
		t.Parallel()

		uc := &fakeUC{}
		cli, _, _ := newTestCLI(uc, map[string]string{EnvBackupPassword: "from-env"}, "")

		require.NoError(t, cli.Run(context.Background(), []string{"register", "--phone", "1-1", "--backup-password", "flag"}))
		assert.Equal(t, "flag", uc.registerIn.BackupPassword)
	})

	t.Run("password from stdin", func(t *testing.T) {
		t.Parallel()

		uc := &fakeUC{}
		cli, _, _ := newTestCLI(uc, nil, "typed secret\n")

		require.NoError(t, cli.Run(context.Background(), []string{"register", "--phone", "1-1"}))
		assert.Equal(t, "typed secret", uc.registerIn.BackupPassword)
	})

	t.Run("already registered", func(t *testing.T) {
		t.Parallel()

		uc := &fakeUC{registerErr: goerror.NewBusinessWrap(entity.ErrDeviceAlreadyRegistered, "A device is already registered", goerror.CodeFailedPrecondition)}
		cli, _, _ := newTestCLI(uc, map[string]string{EnvBackupPassword: "pw"}, "")

		err := cli.Run(context.Background(), []string{"register", "--phone", "1-1"})
		require.ErrorIs(t, err, entity.ErrDeviceAlreadyRegistered)
		assert.Equal(t, 3, ExitCode(err))
	})
}

func TestCLI_Commands(t *testing.T) {
	t.Parallel()

	orig := "LastPass Inc"
	uc := &fakeUC{
		codes:     sampleCodes(),
		syncOut:   &usecase.SyncTimeOutput{Direction: entity.DirectionPast, Offset: 3},
		seedsOut:  &usecase.DumpSeedsOutput{Seeds: []usecase.SeedItem{{Name: "LastPass", Secret: "ONQWIZTTMFSHGYLEMFSAU"}}},
		tokensOut: &usecase.ListTokensOutput{Tokens: []usecase.TokenItem{{Name: "LastPass", OriginalName: orig, AccountType: "authenticator"}}},
	}

	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"list", "--refresh"}, want: "Name: \"LastPass\" Account type: \"authenticator\"\n"},
		{args: []string{"codes"}, want: "Service: \"LastPass\" Token: \"123456\"\nService: \"Digital Ocean\" Token: \"7654321\"\n"},
		{args: []string{"device-codes"}, want: "1111111 2222222 3333333 (expires in 4s)\n"},
		{args: []string{"sync"}, want: "Time synced. Offset: 3s (Past)\n"},
		{args: []string{"check"}, want: "Device is valid. Registered to +49 17172720\n"},
		{args: []string{"dump-seeds"}, want: "Name: \"LastPass\" Secret: \"ONQWIZTTMFSHGYLEMFSAU\"\n"},
		{args: []string{"issue-token", "--subject", "ops"}, want: "jwt-ops\n"},
	}
	for _, tt := range tests {
		cli, out, _ := newTestCLI(uc, nil, "")
		require.NoError(t, cli.Run(context.Background(), tt.args), tt.args)
		assert.Equal(t, tt.want, out.String(), tt.args)
	}

	assert.True(t, uc.listIn.Refresh)
	assert.Equal(t, usecase.TokenCodesInput{}, uc.codesIn)
}

func TestCLI_Serve(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"serve"}} {
		cli, _, served := newTestCLI(&fakeUC{}, nil, "")
		require.NoError(t, cli.Run(context.Background(), args))
		assert.True(t, *served)
	}
}

func TestCLI_UsecaseError(t *testing.T) {
	t.Parallel()

	uc := &fakeUC{err: goerror.NewUpstream(errors.New("vendor down"))}
	cli, out, _ := newTestCLI(uc, nil, "")

	err := cli.Run(context.Background(), []string{"codes", "--output", "json"})
	require.Error(t, err)
	assert.Equal(t, 5, ExitCode(err))
	assert.Empty(t, out.String())
}

func TestCLI_Alfred_IsValidJSON(t *testing.T) {
	t.Parallel()

	cli, out, _ := newTestCLI(&fakeUC{codes: sampleCodes()}, nil, "")
	require.NoError(t, cli.Run(context.Background(), []string{"codes", "--output", "alfred"}))

	var got alfredOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got.Items, 2)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 2, ExitCode(goerror.NewInvalidInput(errors.New("bad"))))
	assert.Equal(t, 4, ExitCode(goerror.NewBusinessWrap(entity.ErrDamagedToken, "damaged", goerror.CodeUnprocessable)))
}
