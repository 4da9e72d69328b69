package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/authy"
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
	"github.com/shandysiswandi/authbite/internal/pkg/storage"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
)

var defaults = map[string]any{
	"vendor.base_url":                             authy.DefaultBaseURL,
	"vendor.locale":                               authy.DefaultLocale,
	"vendor.timeout_seconds":                      30,
	"registration.poll_interval_seconds":          10,
	"registration.max_attempts":                   30,
	"registration.timeout_seconds":                600,
	"keystore.driver":                             keystore.DriverFile,
	"keystore.command.service":                    "authbite",
	"keystore.redis.prefix":                       "authbite:",
	"keystore.postgres.table":                     "authbite_keystore",
	"keystore.object.prefix":                      "authbite/",
	"instrument.service_name":                     "authbite",
	"instrument.log_level":                        "info",
	"instrument.trace_sample_ratio":               1.0,
	"instrument.metric_interval_seconds":          15,
	"jwt.issuer":                                  "authbite",
	"jwt.ttl_minutes":                             60,
	"app.server.max_goroutine":                    4,
	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       30,
	"app.server.http.idle_timeout_seconds":        60,
}

func (a *App) initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := config.NewViper(path,
		config.WithDefaults(defaults),
		config.WithEnvPrefix("AUTHBITE"),
		config.WithEnvBinding("vendor.api_key", "AUTHBITE_VENDOR_API_KEY", "AUTHY_API_KEY"),
	)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	// Command output owns stdout, so logs move to stderr outside server mode.
	logWriter := os.Stdout
	if !a.serverMode() {
		logWriter = os.Stderr
	}

	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   Version,
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		LogWriter:        logWriter,
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.signature = uid.NewSignature()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.kdf = mfa.NewPBKDF2()
	a.cipher = mfa.NewAESCBCCipher()
	a.hotp = otp.NewHOTP()

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

// initJWT builds the bearer token signer. Without jwt.secret the HTTP API
// rejects every protected route and issue-token is unavailable.
func (a *App) initJWT() {
	secret := a.config.GetString("jwt.secret")
	if secret == "" {
		slog.Warn("jwt.secret is not set, protected endpoints are disabled")
		return
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(secret),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = signer
}

// initCache connects redis when redis.url is set. Idempotency locks fall
// back to process memory otherwise.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		a.idemp = idempotency.NewMemory(a.clock)
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initKeystore() {
	driver := strings.TrimSpace(a.config.GetString("keystore.driver"))

	cfg := keystore.Config{
		Driver:        driver,
		FileDir:       strings.TrimSpace(a.config.GetString("keystore.file.dir")),
		Service:       a.config.GetString("keystore.command.service"),
		RedisURL:      strings.TrimSpace(a.config.GetString("keystore.redis.url")),
		RedisPrefix:   a.config.GetString("keystore.redis.prefix"),
		PostgresURL:   strings.TrimSpace(a.config.GetString("keystore.postgres.url")),
		PostgresTable: a.config.GetString("keystore.postgres.table"),
		ObjectDriver:  strings.TrimSpace(a.config.GetString("keystore.object.driver")),
		ObjectBucket:  strings.TrimSpace(a.config.GetString("keystore.object.bucket")),
		ObjectPrefix:  a.config.GetString("keystore.object.prefix"),
		ObjectStorage: storage.FactoryOptions{
			S3: storage.S3Options{
				Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
				Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
				AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
				SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
				SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
				UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
			},
			GCS: storage.GCSOptions{
				CredentialsFile: strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")),
				CredentialsJSON: a.config.GetBinary("storage.gcs.credentials_json"),
				Endpoint:        strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")),
				UserAgent:       strings.TrimSpace(a.config.GetString("storage.gcs.user_agent")),
				WithoutAuth:     a.config.GetBool("storage.gcs.without_auth"),
			},
			MinIO: storage.MinIOOptions{
				Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
				Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
				AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
				SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
				SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
				UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
			},
		},
	}

	store, err := keystore.New(a.ctx, cfg)
	if err != nil {
		slog.Error("failed to init keystore", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.keystore = store
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	a.router.GET("/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Keystore",
			fn: func(context.Context) error {
				return a.keystore.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}

				return a.cacheConn.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
