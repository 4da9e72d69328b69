package authenticator

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/inbound"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/vault"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/authy"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
	"github.com/shandysiswandi/authbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/authbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
	"github.com/shandysiswandi/authbite/internal/pkg/mfa"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context             `validate:"required"`
	Router      *router.Router              `validate:"required"`
	Goroutine   *goroutine.Manager          `validate:"required"`
	Keystore    keystore.Store              `validate:"required"`
	Idempotency idempotency.Idempotency     `validate:"required"`
	Config      config.Config               `validate:"required"`
	Instrument  instrument.Instrumentation  `validate:"required"`
	UUID        uid.StringID                `validate:"required"`
	Signature   uid.StringID                `validate:"required"`
	KDF         mfa.KeyDeriver              `validate:"required"`
	Cipher      mfa.SeedCipher              `validate:"required"`
	OTP         otp.OTP                     `validate:"required"`
	Clock       clock.Clocker               `validate:"required"`
	Validator   validator.Validator         `validate:"required"`
	Serve       func(context.Context) error `validate:"required"`

	Version string
	// JWT is optional. Without it every protected route answers 401 and
	// issue-token fails.
	JWT jwt.JWT
}

// New wires the authenticator module, registers its HTTP endpoints and
// returns the command line front end bound to the same usecase.
func New(dep Dependency) (*inbound.CLI, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	client, err := authy.New(authy.Config{
		BaseURL: dep.Config.GetString("vendor.base_url"),
		APIKey:  dep.Config.GetString("vendor.api_key"),
		Locale:  dep.Config.GetString("vendor.locale"),
		Version: dep.Version,
		Timeout: dep.Config.GetSecond("vendor.timeout_seconds"),
	}, dep.Instrument)
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoVendor:  client,
		RepoVault:   vault.New(dep.Keystore, dep.Instrument),
		Idempotency: dep.Idempotency,
		Validator:   dep.Validator,
		Config:      dep.Config,
		UUID:        dep.UUID,
		Signature:   dep.Signature,
		KDF:         dep.KDF,
		Cipher:      dep.Cipher,
		OTP:         dep.OTP,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	if err := uc.Load(dep.Ctx); err != nil {
		return nil, err
	}

	inbound.RegisterHTTPEndpoint(dep.Ctx, dep.Router, uc, dep.Goroutine)

	return inbound.NewCLI(uc, dep.JWT, dep.Serve), nil
}
