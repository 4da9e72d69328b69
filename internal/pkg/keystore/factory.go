package keystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/shandysiswandi/authbite/internal/pkg/storage"
)

// Supported drivers.
const (
	DriverFile     = "file"
	DriverKeyring  = "keyring"
	DriverCommand  = "command"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverObject   = "object"
	DriverMemory   = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Driver string

	FileDir string
	Service string

	RedisURL    string
	RedisPrefix string

	PostgresURL   string
	PostgresTable string

	ObjectDriver  string
	ObjectBucket  string
	ObjectPrefix  string
	ObjectStorage storage.FactoryOptions
}

// New constructs a Store for cfg.Driver. An empty driver means file.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		return NewFile(cfg.FileDir)
	case DriverKeyring:
		return NewKeyring(cfg.Service), nil
	case DriverCommand:
		return NewCommand(cfg.Service, nil), nil
	case DriverRedis:
		return NewRedisFromURL(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case DriverPostgres:
		return NewPostgresFromURL(ctx, cfg.PostgresURL, cfg.PostgresTable)
	case DriverObject:
		stg, err := storage.NewFromDriver(ctx, cfg.ObjectDriver, cfg.ObjectStorage)
		if err != nil {
			return nil, fmt.Errorf("keystore: object backend: %w", err)
		}
		return NewObject(stg, cfg.ObjectBucket, cfg.ObjectPrefix), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
