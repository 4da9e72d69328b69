// Package storage provides a small object-store abstraction over S3, GCS and
// MinIO. It only covers whole-object reads and writes; callers that need
// listings or signed URLs should talk to the SDK directly.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the bucket has no object under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines object storage operations.
type Storage interface {
	io.Closer

	// PutObject stores data and returns object metadata.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	// GetObject retrieves the object body. Callers must close it.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the expected content length.
	Size int64
	// ContentType is the MIME type for the object.
	ContentType string
	// Metadata includes custom key/value metadata.
	Metadata map[string]string
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Metadata    map[string]string
	UpdatedAt   time.Time
}
