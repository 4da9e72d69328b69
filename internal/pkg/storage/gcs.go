package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
}

// GCSOptions configures GCS client initialization. When Client is set the
// remaining fields are ignored.
type GCSOptions struct {
	Client *gcs.Client

	CredentialsFile string
	CredentialsJSON []byte
	Endpoint        string
	UserAgent       string
	WithoutAuth     bool
}

// NewGCS constructs a GCS adapter.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	if opts.Client != nil {
		return &GCSAdapter{client: opts.Client}, nil
	}

	clientOpts, err := gcsClientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: init gcs client: %w", err)
	}

	return &GCSAdapter{client: client}, nil
}

func gcsClientOptions(ctx context.Context, opts GCSOptions) ([]option.ClientOption, error) {
	var out []option.ClientOption
	if opts.WithoutAuth {
		out = append(out, option.WithoutAuthentication())
	}

	credsJSON := opts.CredentialsJSON
	if len(credsJSON) == 0 && opts.CredentialsFile != "" {
		// #nosec G304 -- path is from trusted config file.
		raw, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("storage: read gcs credentials file: %w", err)
		}
		credsJSON = raw
	}
	if len(credsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, credsJSON, gcs.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("storage: parse gcs credentials: %w", err)
		}
		out = append(out, option.WithCredentials(creds))
	}

	if opts.Endpoint != "" {
		out = append(out, option.WithEndpoint(opts.Endpoint))
	}
	if opts.UserAgent != "" {
		out = append(out, option.WithUserAgent(opts.UserAgent))
	}

	return out, nil
}

// PutObject stores data in GCS and returns metadata.
func (g *GCSAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = opts.ContentType
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	if _, err := io.Copy(writer, r); err != nil {
		return ObjectInfo{}, errors.Join(err, writer.Close())
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}

	if attrs := writer.Attrs(); attrs != nil {
		return gcsAttrsToInfo(attrs), nil
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        opts.Size,
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}, nil
}

// GetObject retrieves data and metadata from GCS.
func (g *GCSAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, gcsError(err)
	}

	info := ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        reader.Attrs.Size,
		ContentType: reader.Attrs.ContentType,
		UpdatedAt:   reader.Attrs.LastModified,
	}

	return reader, info, nil
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}

func gcsError(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}

	return err
}

func gcsAttrsToInfo(attrs *gcs.ObjectAttrs) ObjectInfo {
	return ObjectInfo{
		Bucket:      attrs.Bucket,
		Key:         attrs.Name,
		Size:        attrs.Size,
		ETag:        attrs.Etag,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
		UpdatedAt:   attrs.Updated,
	}
}
