package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Adapter implements Storage using AWS S3 or any S3-compatible endpoint.
type S3Adapter struct {
	client *s3.Client
}

// S3Options configures S3 client initialization.
type S3Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	UsePathStyle bool
}

// NewS3 constructs an S3 adapter. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, opts S3Options) (*S3Adapter, error) {
	var loadOpts []func(*config.LoadOptions) error
	switch {
	case opts.Region != "":
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	case opts.Endpoint != "":
		loadOpts = append(loadOpts, config.WithRegion("us-east-1"))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewS3WithClient(client), nil
}

// NewS3WithClient wraps an existing S3 client.
func NewS3WithClient(client *s3.Client) *S3Adapter {
	return &S3Adapter{client: client}
}

// PutObject stores data in S3 and returns metadata.
func (s *S3Adapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     r,
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.Size > 0 {
		input.ContentLength = aws.Int64(opts.Size)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        opts.Size,
		ETag:        aws.ToString(out.ETag),
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}, nil
}

// GetObject retrieves data and metadata from S3.
func (s *S3Adapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, s3Error(err)
	}

	info := ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        aws.ToString(out.ETag),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
		UpdatedAt:   aws.ToTime(out.LastModified),
	}

	return out.Body, info, nil
}

// Close is a no-op; the S3 client holds no closable resources.
func (s *S3Adapter) Close() error {
	return nil
}

func s3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}

	return err
}
