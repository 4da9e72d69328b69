package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOAdapter implements Storage using MinIO.
type MinIOAdapter struct {
	client *minio.Client
}

// MinIOOptions configures MinIO client initialization.
type MinIOOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseSSL       bool
}

// NewMinIO constructs a MinIO adapter with the provided options.
func NewMinIO(opts MinIOOptions) (*MinIOAdapter, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init minio client: %w", err)
	}

	return &MinIOAdapter{client: client}, nil
}

// PutObject stores data in MinIO and returns metadata.
func (m *MinIOAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	size := opts.Size
	if size <= 0 {
		size = -1
	}

	info, err := m.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}, nil
}

// GetObject retrieves data and metadata from MinIO.
func (m *MinIOAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, minioError(err)
	}

	// The object is fetched lazily; Stat surfaces a missing key.
	stat, err := obj.Stat()
	if err != nil {
		return nil, ObjectInfo{}, errors.Join(minioError(err), obj.Close())
	}

	return obj, minioStatToInfo(bucket, key, stat), nil
}

// Close is a no-op for MinIO.
func (m *MinIOAdapter) Close() error {
	return nil
}

func minioError(err error) error {
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}

	return err
}

func minioStatToInfo(bucket, key string, stat minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        stat.Size,
		ETag:        stat.ETag,
		ContentType: stat.ContentType,
		Metadata:    stat.UserMetadata,
		UpdatedAt:   stat.LastModified,
	}
}
