package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/authbite/internal/authenticator"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

func (a *App) initModules() {
	cli, err := authenticator.New(authenticator.Dependency{
		Ctx:         a.ctx,
		Router:      a.router,
		Goroutine:   a.goroutine,
		Keystore:    a.keystore,
		Idempotency: a.idemp,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Signature:   a.signature,
		KDF:         a.kdf,
		Cipher:      a.cipher,
		OTP:         a.hotp,
		Clock:       a.clock,
		Validator:   a.validator,
		Serve:       a.serve,
		Version:     Version,
		JWT:         a.jwt,
	})
	if err != nil {
		slog.Error("failed to init module authenticator", "error", err)
		os.Exit(1)
	}

	a.cli = cli
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (healthResponse) Message() string { return "service is healthy" }

func (a *App) health(*router.Request) (any, error) {
	return healthResponse{Status: "ok", Version: Version}, nil
}
