package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/vault"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/authy"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/authy/vendortest"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
	"github.com/shandysiswandi/authbite/internal/pkg/mfa"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	backupPassword = "backup-password"
	// rfcSeed is the Base32 text of the RFC 4226 test secret "12345678901234567890".
	rfcSeed = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
)

const fastPoll = `
registration:
  poll_interval_seconds: 0.01
  max_attempts: 5
  timeout_seconds: 5
`

type fixture struct {
	uc    *Usecase
	srv   *vendortest.Server
	store *keystore.Memory
	clk   *clock.Fixed
}

func newFixture(t *testing.T, cfgYAML string) *fixture {
	t.Helper()

	srv := vendortest.New(t)
	store := keystore.NewMemory()
	clk := clock.NewFixedUnix(59)

	return &fixture{
		uc:    newUsecase(t, srv, store, clk, cfgYAML),
		srv:   srv,
		store: store,
		clk:   clk,
	}
}

func newUsecase(t *testing.T, srv *vendortest.Server, store keystore.Store, clk *clock.Fixed, cfgYAML string) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(cfgYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	client, err := authy.New(authy.Config{BaseURL: srv.BaseURL(), APIKey: "key"}, nil)
	require.NoError(t, err)

	ins := instrument.NewNoop()

	return New(Dependency{
		RepoVendor:  client,
		RepoVault:   vault.New(store, ins),
		Idempotency: idempotency.NewMemory(clk),
		Validator:   v,
		Config:      cfg,
		UUID:        uid.NewUUID(),
		Signature:   uid.NewSignature(),
		KDF:         mfa.NewPBKDF2(),
		Cipher:      mfa.NewAESCBCCipher(),
		OTP:         otp.NewHOTP(),
		Clock:       clk,
		Instrument:  ins,
	})
}

func registeredAccount() entity.Account {
	return entity.Account{
		AuthyID:        vendortest.AuthyID,
		DeviceName:     "laptop",
		Signature:      "sig",
		Device:         &entity.Device{ID: vendortest.DeviceID, SecretSeed: vendortest.DeviceSecret},
		BackupPassword: backupPassword,
	}
}

func (f *fixture) register(t *testing.T) {
	t.Helper()

	require.NoError(t, f.store.Set(context.Background(), "devices", registeredAccount()))
}

func encryptedToken(t *testing.T, name, salt, seed string, digits int) entity.AuthenticatorToken {
	t.Helper()

	enc, err := mfa.NewAESCBCCipher().Encrypt(mfa.DeriveKey(backupPassword, salt), []byte(seed))
	require.NoError(t, err)

	return entity.AuthenticatorToken{
		AccountType:   "authenticator",
		Digits:        digits,
		EncryptedSeed: enc,
		Name:          name,
		Salt:          salt,
		UniqueID:      name + "-id",
	}
}

func assertCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	ge, ok := goerror.As(err)
	require.True(t, ok, "expected goerror, got %v", err)
	assert.Equal(t, code, ge.Code())
}

func TestUsecase_RegisterDevice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fastPoll)
	f.srv.PendingPolls = 2

	out, err := f.uc.RegisterDevice(context.Background(), RegisterDeviceInput{
		Phone:          "1-5551234567",
		DeviceName:     "laptop",
		BackupPassword: backupPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, &RegisterDeviceOutput{
		AuthyID:    vendortest.AuthyID,
		DeviceID:   vendortest.DeviceID,
		DeviceName: "laptop",
	}, out)

	assert.Len(t, f.srv.Requests(vendortest.RouteRegistrationStatus), 3)

	start := f.srv.Requests(vendortest.RouteRegistrationStart)
	require.Len(t, start, 1)
	signature := start[0].Form.Get("signature")
	assert.Len(t, signature, 64)

	for _, r := range f.srv.Requests(vendortest.RouteRegistrationStatus) {
		assert.Equal(t, signature, r.Query.Get("signature"))
	}

	var acc entity.Account
	require.NoError(t, f.store.Get(context.Background(), "devices", &acc))
	assert.Equal(t, vendortest.AuthyID, acc.AuthyID)
	assert.Equal(t, signature, acc.Signature)
	assert.Equal(t, backupPassword, acc.BackupPassword)
	assert.Equal(t, &entity.Device{ID: vendortest.DeviceID, SecretSeed: vendortest.DeviceSecret}, acc.Device)

	_, err = f.uc.RegisterDevice(context.Background(), RegisterDeviceInput{
		Phone:          "1-5551234567",
		DeviceName:     "laptop",
		BackupPassword: backupPassword,
	})
	require.ErrorIs(t, err, entity.ErrDeviceAlreadyRegistered)
	assertCode(t, err, goerror.CodeFailedPrecondition)
}

func TestUsecase_RegisterDevice_Errors(t *testing.T) {
	t.Parallel()

	valid := RegisterDeviceInput{Phone: "1-5551234567", DeviceName: "laptop", BackupPassword: backupPassword}

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fastPoll)
		_, err := f.uc.RegisterDevice(context.Background(), RegisterDeviceInput{Phone: "call me", DeviceName: "laptop"})
		ge, ok := goerror.As(err)
		require.True(t, ok)
		assert.Equal(t, goerror.TypeValidation, ge.Type())
		assert.Empty(t, f.srv.Requests(vendortest.RouteUserStatus))
	})

	t.Run("new user", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fastPoll)
		f.srv.UserMessage = entity.UserMessageNew
		_, err := f.uc.RegisterDevice(context.Background(), valid)
		require.ErrorIs(t, err, entity.ErrAccountRegistrationUnsupported)
		assertCode(t, err, goerror.CodeFailedPrecondition)
		assert.Empty(t, f.srv.Requests(vendortest.RouteRegistrationStart))
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fastPoll)
		f.srv.PendingPolls = 100
		_, err := f.uc.RegisterDevice(context.Background(), valid)
		require.ErrorIs(t, err, entity.ErrRegistrationTimeout)
		assertCode(t, err, goerror.CodeTimeout)
		assert.Len(t, f.srv.Requests(vendortest.RouteRegistrationStatus), 5)
		assert.Empty(t, f.srv.Requests(vendortest.RouteRegistrationComplete))

		_, ok := f.store.Raw("devices")
		assert.False(t, ok)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, `
registration:
  poll_interval_seconds: 0.02
  max_attempts: 1000
`)
		f.srv.PendingPolls = 100000

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)

		_, err := f.uc.RegisterDevice(ctx, valid)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, f.srv.Requests(vendortest.RouteRegistrationComplete))

		_, ok := f.store.Raw("devices")
		assert.False(t, ok)
	})

	t.Run("vendor rejects start", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fastPoll)
		f.srv.Fail(vendortest.RouteRegistrationStart, 400, `{"error_code":"60001","message":"bad"}`)
		_, err := f.uc.RegisterDevice(context.Background(), valid)

		var apiErr *entity.APIError
		require.ErrorAs(t, err, &apiErr)
		assertCode(t, err, goerror.CodeUpstream)
	})
}

func TestUsecase_Fail_IdempotencyStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "in progress", err: idempotency.ErrAlreadyInProgress, want: "Registration is already in progress"},
		{name: "completed", err: idempotency.ErrAlreadyCompleted, want: "Registration was already completed"},
		{name: "failed", err: idempotency.ErrAlreadyFailed, want: "Registration already failed, start a new one"},
	}

	uc := &Usecase{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := uc.fail(context.Background(), "register device", tt.err)
			require.ErrorIs(t, err, tt.err)
			ge, ok := goerror.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, ge.Msg())
			assert.Equal(t, goerror.CodeFailedPrecondition, ge.Code())
		})
	}
}

func TestUsecase_NotRegistered(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	ctx := context.Background()

	require.NoError(t, f.uc.Load(ctx))

	calls := map[string]func() error{
		"check": func() error { return f.uc.CheckCurrentDevice(ctx) },
		"keys":  func() error { _, err := f.uc.CheckDeviceKeys(ctx); return err },
		"sync":  func() error { _, err := f.uc.SyncTime(ctx); return err },
		"codes": func() error { _, err := f.uc.DeviceCodes(ctx); return err },
		"list":  func() error { _, err := f.uc.ListTokens(ctx, ListTokensInput{}); return err },
		"token": func() error { _, err := f.uc.TokenCode(ctx, TokenCodeInput{Name: "x"}); return err },
		"all":   func() error { _, err := f.uc.TokenCodes(ctx, TokenCodesInput{}); return err },
		"dump":  func() error { _, err := f.uc.DumpSeeds(ctx); return err },
	}
	for name, call := range calls {
		err := call()
		require.ErrorIs(t, err, entity.ErrDeviceNotInitialized, name)
		assertCode(t, err, goerror.CodeFailedPrecondition)
	}

	for _, route := range []string{vendortest.RouteDeviceCheck, vendortest.RouteDeviceKeys, vendortest.RouteAuthSync, vendortest.RouteTokens} {
		assert.Empty(t, f.srv.Requests(route), route)
	}
}

func TestUsecase_SyncTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := vendortest.New(t)
	store := keystore.NewMemory()
	require.NoError(t, store.Set(ctx, "devices", registeredAccount()))

	clk := clock.NewFixedUnix(1700000100)
	uc := newUsecase(t, srv, store, clk, "")

	out, err := uc.SyncTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncTimeOutput{Direction: entity.DirectionPast, Offset: 100, LastTimeChecked: 1700000100}, out)

	key, err := registeredAccount().Device.Key()
	require.NoError(t, err)
	local, err := otp.NewHOTP().Windows(key, 1700000100, entity.DeviceCodePeriod, entity.DeviceCodeDigits, entity.DeviceCodeWindows)
	require.NoError(t, err)
	corrected, err := otp.NewHOTP().Windows(key, 1700000000, entity.DeviceCodePeriod, entity.DeviceCodeDigits, entity.DeviceCodeWindows)
	require.NoError(t, err)

	sync := srv.Requests(vendortest.RouteAuthSync)
	require.Len(t, sync, 1)
	assert.Equal(t, local[0], sync[0].Query.Get("otp1"))

	codes, err := uc.DeviceCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, corrected, codes.Codes)
	assert.Equal(t, uint64(10), codes.ExpiresIn)

	var acc entity.Account
	require.NoError(t, store.Get(ctx, "devices", &acc))
	require.NotNil(t, acc.TimeSync)
	assert.Equal(t, uint64(100), acc.TimeSync.Offset)

	// a fresh process restores the correction from the vault
	restarted := newUsecase(t, srv, store, clk, "")
	require.NoError(t, restarted.Load(ctx))
	require.NoError(t, restarted.CheckCurrentDevice(ctx))

	check := srv.Requests(vendortest.RouteDeviceCheck)
	require.Len(t, check, 1)
	assert.Equal(t, corrected[0], check[0].Query.Get("otp1"))
	assert.Equal(t, corrected[2], check[0].Query.Get("otp3"))
}

func TestUsecase_SyncTime_BadMovingFactor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)
	f.srv.MovingFactor = "later"

	_, err := f.uc.SyncTime(context.Background())
	require.ErrorIs(t, err, entity.ErrInvalidMovingFactor)
	assertCode(t, err, goerror.CodeUpstream)
}

func TestUsecase_CheckDeviceKeys(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)

	out, err := f.uc.CheckDeviceKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CheckDeviceKeysOutput{Cellphone: vendortest.Cellphone, CountryCode: vendortest.CountryCode}, out)
}

func TestUsecase_ListTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, "vendor:\n  apps: one,two\n")
	f.register(t)
	original := "LastPass Inc"
	lastPass := encryptedToken(t, "LastPass", "dsdsad", "ONQWIZTTMFSHGYLEMFSAU===", 6)
	lastPass.OriginalName = &original
	f.srv.Tokens = []entity.AuthenticatorToken{lastPass}

	out, err := f.uc.ListTokens(ctx, ListTokensInput{})
	require.NoError(t, err)
	assert.Equal(t, []TokenItem{{
		Name:         "LastPass",
		OriginalName: original,
		AccountType:  "authenticator",
		Digits:       6,
		UniqueID:     "LastPass-id",
	}}, out.Tokens)

	reqs := f.srv.Requests(vendortest.RouteTokens)
	require.Len(t, reqs, 1)
	assert.Equal(t, "one,two", reqs[0].Query.Get("apps"))

	_, err = f.uc.ListTokens(ctx, ListTokensInput{})
	require.NoError(t, err)
	assert.Len(t, f.srv.Requests(vendortest.RouteTokens), 1)

	_, err = f.uc.ListTokens(ctx, ListTokensInput{Refresh: true})
	require.NoError(t, err)
	assert.Len(t, f.srv.Requests(vendortest.RouteTokens), 2)

	require.NoError(t, f.store.Set(ctx, "tokens", "not a list"))
	_, err = f.uc.ListTokens(ctx, ListTokensInput{})
	require.NoError(t, err)
	assert.Len(t, f.srv.Requests(vendortest.RouteTokens), 3)
}

func TestUsecase_ListTokens_Damaged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)
	f.srv.Fail(vendortest.RouteTokens, 400, `{"error_code":"60043","message":"damaged"}`)

	_, err := f.uc.ListTokens(context.Background(), ListTokensInput{Refresh: true})
	require.ErrorIs(t, err, entity.ErrDamagedToken)
	assertCode(t, err, goerror.CodeUnprocessable)
}

func TestUsecase_TokenCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)
	f.srv.Tokens = []entity.AuthenticatorToken{
		encryptedToken(t, "LastPass", "dsdsad", "ONQWIZTTMFSHGYLEMFSAU===", 6),
		encryptedToken(t, "Digital Ocean", "dsadsad", "ONQWIZTTMFSHGYLEMFSAU", 7),
		encryptedToken(t, "RFC Test", "salty", rfcSeed, 6),
	}
	ctx := context.Background()

	tests := []struct {
		query  string
		name   string
		digits int
	}{
		{query: "lastpass", name: "LastPass", digits: 6},
		{query: "last", name: "LastPass", digits: 6},
		{query: "ocean", name: "Digital Ocean", digits: 7},
		{query: "Digital Ocean", name: "Digital Ocean", digits: 7},
		{query: "digitalocean", name: "Digital Ocean", digits: 7},
		{query: "rfc", name: "RFC Test", digits: 6},
	}
	for _, tt := range tests {
		out, err := f.uc.TokenCode(ctx, TokenCodeInput{Name: tt.query})
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.name, out.Name, tt.query)
		assert.Equal(t, tt.digits, out.Digits, tt.query)
		assert.Regexp(t, `^[0-9]+$`, out.Code, tt.query)
		assert.Len(t, out.Code, tt.digits, tt.query)
		assert.Equal(t, uint64(1), out.ExpiresIn, tt.query)
	}

	// RFC 4226 vector for counter 1
	out, err := f.uc.TokenCode(ctx, TokenCodeInput{Name: "rfc"})
	require.NoError(t, err)
	assert.Equal(t, "287082", out.Code)

	_, err = f.uc.TokenCode(ctx, TokenCodeInput{Name: "github"})
	require.ErrorIs(t, err, entity.ErrTokenNotFound)
	assertCode(t, err, goerror.CodeNotFound)

	_, err = f.uc.TokenCode(ctx, TokenCodeInput{})
	ge, ok := goerror.As(err)
	require.True(t, ok)
	assert.Equal(t, goerror.TypeValidation, ge.Type())
}

func TestUsecase_TokenCode_MissingBackupPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, "")
	acc := registeredAccount()
	acc.BackupPassword = ""
	require.NoError(t, f.store.Set(ctx, "devices", acc))
	f.srv.Tokens = []entity.AuthenticatorToken{encryptedToken(t, "RFC Test", "salty", rfcSeed, 6)}

	_, err := f.uc.TokenCode(ctx, TokenCodeInput{Name: "rfc"})
	require.ErrorIs(t, err, entity.ErrBackupPasswordRequired)
	assertCode(t, err, goerror.CodeFailedPrecondition)
}

func TestUsecase_TokenCodes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)
	broken := encryptedToken(t, "Broken", "salt", rfcSeed, 6)
	broken.EncryptedSeed = "%%%"
	f.srv.Tokens = []entity.AuthenticatorToken{
		encryptedToken(t, "RFC Test", "salty", rfcSeed, 6),
		broken,
		encryptedToken(t, "Digital Ocean", "dsadsad", "ONQWIZTTMFSHGYLEMFSAU", 0),
	}
	ctx := context.Background()

	out, err := f.uc.TokenCodes(ctx, TokenCodesInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, TokenCodesItem{Name: "RFC Test", Code: "287082", Digits: 6}, out.Items[0])
	assert.Equal(t, "Broken", out.Items[1].Name)
	assert.Empty(t, out.Items[1].Code)
	assert.Contains(t, out.Items[1].Error, `"Broken"`)
	assert.Len(t, out.Items[2].Code, entity.DefaultTokenDigits)
	assert.Equal(t, uint64(1), out.ExpiresIn)

	out, err = f.uc.TokenCodes(ctx, TokenCodesInput{Name: "o"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	_, err = f.uc.TokenCodes(ctx, TokenCodesInput{Name: "zzz"})
	require.ErrorIs(t, err, entity.ErrTokenNotFound)
}

func TestUsecase_DumpSeeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.register(t)
	f.srv.Tokens = []entity.AuthenticatorToken{
		encryptedToken(t, "RFC Test", "salty", rfcSeed, 6),
		encryptedToken(t, "Digital Ocean", "dsadsad", "ONQWIZTTMFSHGYLEMFSAU", 6),
	}

	out, err := f.uc.DumpSeeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SeedItem{
		{Name: "RFC Test", Secret: rfcSeed},
		{Name: "Digital Ocean", Secret: "ONQWIZTTMFSHGYLEMFSAU"},
	}, out.Seeds)
}

func TestMatchTokens(t *testing.T) {
	t.Parallel()

	orig := "Amazon Web Services"
	tokens := []entity.AuthenticatorToken{
		{Name: "AWS prod", OriginalName: &orig},
		{Name: "AWS"},
		{Name: "Laws"},
		{Name: "GitHub"},
	}

	names := func(found []entity.AuthenticatorToken) []string {
		out := make([]string, 0, len(found))
		for _, t := range found {
			out = append(out, t.Name)
		}
		return out
	}

	assert.Equal(t, []string{"AWS"}, names(matchTokens(tokens, "aws")))
	assert.Equal(t, []string{"AWS prod"}, names(matchTokens(tokens, "awsp")))
	assert.Equal(t, []string{"AWS prod"}, names(matchTokens(tokens, "amazon")))
	assert.Equal(t, []string{"GitHub"}, names(matchTokens(tokens, "hub")))
	assert.Equal(t, []string{"GitHub"}, names(matchTokens(tokens, " Git Hub ")))
	assert.Empty(t, matchTokens(tokens, ""))
	assert.Empty(t, matchTokens(tokens, "gitlab"))
}
