package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Supported drivers.
const (
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver constructs a Storage implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
