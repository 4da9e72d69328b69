package app

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/authbite/internal/authenticator/inbound"
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

// Version is stamped at build time with -ldflags "-X ...app.Version=v1.2.3".
var Version = "dev"

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// args are the command line arguments without the program name.
	args []string

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	signature uid.StringID
	kdf       mfa.KeyDeriver
	cipher    mfa.SeedCipher
	hotp      otp.OTP
	jwt       jwt.JWT

	// resources
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	keystore  keystore.Store

	// server
	router     *router.Router
	httpServer *http.Server

	// front end
	cli *inbound.CLI

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application for the given command line and returns an
// App instance.
func New(args []string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		args:   args,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCache()
	app.initKeystore()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

// serverMode reports whether the command line asks for the HTTP front end.
func (a *App) serverMode() bool {
	return len(a.args) == 0 || a.args[0] == "serve"
}
