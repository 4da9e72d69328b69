package keystore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/shandysiswandi/authbite/internal/pkg/storage"
)

// maxObjectSize bounds how much of a stored object is read back.
const maxObjectSize = 1 << 20

// Object stores records as <prefix><key>.json objects in a bucket.
type Object struct {
	stg    storage.Storage
	bucket string
	prefix string
}

// NewObject returns an object-storage backed store. The store owns stg and
// closes it on Close.
func NewObject(stg storage.Storage, bucket, prefix string) *Object {
	return &Object{stg: stg, bucket: bucket, prefix: prefix}
}

func (o *Object) objectKey(key string) string {
	return o.prefix + key + ".json"
}

func (o *Object) Get(ctx context.Context, key string, out any) error {
	body, _, err := o.stg.GetObject(ctx, o.bucket, o.objectKey(key))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return backendError("object get", key, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxObjectSize))
	if err != nil {
		return backendError("object read", key, err)
	}

	return Unmarshal(data, out)
}

func (o *Object) Set(ctx context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}

	_, err = o.stg.PutObject(ctx, o.bucket, o.objectKey(key), bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: "application/json",
	})
	if err != nil {
		return backendError("object put", key, err)
	}

	return nil
}

func (o *Object) Close() error {
	return o.stg.Close()
}
