package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
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
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const (
	defaultPollInterval    = 10 * time.Second
	defaultPollMaxAttempts = 30
	defaultPollTimeout     = 600 * time.Second
)

type repoVendor interface {
	CheckUserStatus(ctx context.Context, phone, uuid string) (*entity.UserStatus, error)
	StartRegistration(ctx context.Context, authyID uint64, signature, deviceName string) (string, error)
	CheckRegistration(ctx context.Context, authyID uint64, requestID, signature string) (*entity.RegistrationStatus, error)
	CompleteRegistration(ctx context.Context, authyID uint64, pin, deviceName string) (*entity.CompletedRegistration, error)

	CheckCurrentDevice(ctx context.Context, device entity.Device, dc entity.DeviceCodes) error
	CheckDeviceKeys(ctx context.Context, authyID, deviceID uint64, dc entity.DeviceCodes) (*entity.DeviceOwner, error)
	AuthSync(ctx context.Context, deviceID uint64, dc entity.DeviceCodes) (uint64, error)
	ListAuthenticatorTokens(ctx context.Context, authyID, deviceID uint64, dc entity.DeviceCodes, apps []string) ([]entity.AuthenticatorToken, error)
}

type repoVault interface {
	GetAccount(ctx context.Context) (*entity.Account, error)
	SaveAccount(ctx context.Context, acc entity.Account) error
	GetTokens(ctx context.Context) ([]entity.AuthenticatorToken, error)
	SaveTokens(ctx context.Context, tokens []entity.AuthenticatorToken) error
}

type Usecase struct {
	repoVendor repoVendor
	repoVault  repoVault
	idemp      idempotency.Idempotency
	validator  validator.Validator
	cfg        config.Config
	uuid       uid.StringID
	signature  uid.StringID
	kdf        mfa.KeyDeriver
	cipher     mfa.SeedCipher
	otp        otp.OTP
	clock      clock.Clocker
	ins        instrument.Instrumentation

	accMu    sync.RWMutex
	account  *entity.Account
	timeSync atomic.Pointer[entity.TimeSync]

	readyMu sync.Mutex
	ready   map[string]*entity.ReadyToken
}

type Dependency struct {
	RepoVendor  repoVendor
	RepoVault   repoVault
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	UUID        uid.StringID
	Signature   uid.StringID
	KDF         mfa.KeyDeriver
	Cipher      mfa.SeedCipher
	OTP         otp.OTP
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoVendor: dep.RepoVendor,
		repoVault:  dep.RepoVault,
		idemp:      dep.Idempotency,
		validator:  dep.Validator,
		cfg:        dep.Config,
		uuid:       dep.UUID,
		signature:  dep.Signature,
		kdf:        dep.KDF,
		cipher:     dep.Cipher,
		otp:        dep.OTP,
		clock:      dep.Clock,
		ins:        dep.Instrument,
		ready:      make(map[string]*entity.ReadyToken),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.usecase").Start(ctx, name)
}

// now returns the local unix time, uncorrected.
func (s *Usecase) now() uint64 {
	return clock.Unix(s.clock)
}

// correctedNow returns the local unix time shifted by the last time sync.
func (s *Usecase) correctedNow() uint64 {
	if ts := s.timeSync.Load(); ts != nil {
		return ts.Correct(s.now())
	}

	return s.now()
}

// deviceCodes returns the three device codes for the window starting at unix.
func (s *Usecase) deviceCodes(device entity.Device, unix uint64) (entity.DeviceCodes, error) {
	key, err := device.Key()
	if err != nil {
		return entity.DeviceCodes{}, err
	}

	codes, err := s.otp.Windows(key, unix, entity.DeviceCodePeriod, entity.DeviceCodeDigits, entity.DeviceCodeWindows)
	if err != nil {
		return entity.DeviceCodes{}, err
	}

	dc, ok := entity.NewDeviceCodes(codes)
	if !ok {
		return entity.DeviceCodes{}, otp.ErrInvalidDigits
	}

	return dc, nil
}

// setAccount replaces the in-memory account and its time sync.
func (s *Usecase) setAccount(acc *entity.Account) {
	s.accMu.Lock()
	s.account = acc
	s.accMu.Unlock()

	if acc != nil && acc.TimeSync != nil {
		ts := *acc.TimeSync
		s.timeSync.Store(&ts)
	}
}

// requireAccount returns a copy of the registered account, loading it from
// the vault on first use. It never calls the vendor.
func (s *Usecase) requireAccount(ctx context.Context) (entity.Account, entity.Device, error) {
	s.accMu.RLock()
	acc := s.account
	s.accMu.RUnlock()

	if acc == nil {
		loaded, err := s.repoVault.GetAccount(ctx)
		if errors.Is(err, keystore.ErrNotFound) {
			return entity.Account{}, entity.Device{}, entity.ErrDeviceNotInitialized
		}
		if err != nil {
			return entity.Account{}, entity.Device{}, err
		}
		s.setAccount(loaded)
		acc = loaded
	}

	device, err := acc.RequireDevice()
	if err != nil {
		return entity.Account{}, entity.Device{}, err
	}

	return *acc, device, nil
}

// fail logs err and returns the matching goerror. The domain error stays
// reachable through errors.Is and errors.As.
func (s *Usecase) fail(ctx context.Context, msg string, err error) error {
	var (
		apiErr *entity.APIError
		tokErr *entity.TokenError
	)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Request was canceled", goerror.CodeTimeout)

	case errors.Is(err, entity.ErrDeviceNotInitialized):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "No device is registered", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrDeviceAlreadyRegistered):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "A device is already registered", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrAccountRegistrationUnsupported):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Account registration is not supported", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrUnknownUserStatus):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Unknown user status", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrMissingRegistrationPIN):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Registration was accepted without a pin", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrTokenNotInitialized), errors.Is(err, entity.ErrBackupPasswordRequired):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Backup password is required", goerror.CodeFailedPrecondition)
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Registration is already in progress", goerror.CodeFailedPrecondition)
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Registration was already completed", goerror.CodeFailedPrecondition)
	case errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Registration already failed, start a new one", goerror.CodeFailedPrecondition)
	case errors.Is(err, entity.ErrRegistrationTimeout):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Registration was not approved in time", goerror.CodeTimeout)
	case errors.Is(err, entity.ErrTokenNotFound):
		slog.WarnContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Token not found", goerror.CodeNotFound)

	case errors.Is(err, entity.ErrDamagedToken):
		slog.ErrorContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Authenticator token is damaged", goerror.CodeUnprocessable)
	case errors.As(err, &tokErr):
		slog.ErrorContext(ctx, msg, "service", tokErr.ServiceName, "op", tokErr.Op, "error", err)
		return goerror.NewBusinessWrap(err, "Failed to compute code for "+tokErr.ServiceName, goerror.CodeUnprocessable)
	case errors.Is(err, entity.ErrInvalidDeviceSecret):
		slog.ErrorContext(ctx, msg, "error", err)
		return goerror.NewBusinessWrap(err, "Stored device secret is invalid", goerror.CodeUnprocessable)

	case errors.As(err, &apiErr):
		slog.ErrorContext(ctx, msg, "status", apiErr.StatusCode, "error", err)
		return goerror.NewUpstream(err)
	case errors.Is(err, entity.ErrTransport), errors.Is(err, entity.ErrInvalidMovingFactor):
		slog.ErrorContext(ctx, msg, "error", err)
		return goerror.NewUpstream(err)

	default:
		slog.ErrorContext(ctx, msg, "error", err)
		return goerror.NewServer(err)
	}
}
