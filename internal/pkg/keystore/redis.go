package keystore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores records as plain string values under <prefix><key>.
type Redis struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedis wraps an existing client. The caller keeps ownership of it.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// NewRedisFromURL dials redis from a redis:// URL and pings it.
func NewRedisFromURL(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, backendError("parse url", prefix, err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, backendError("ping", prefix, err)
	}

	return &Redis{client: client, prefix: prefix, owned: true}, nil
}

func (r *Redis) Get(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return backendError("redis get", key, err)
	}

	return Unmarshal(data, out)
}

func (r *Redis) Set(ctx context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return backendError("redis set", key, err)
	}

	return nil
}

// Close closes the client only when the store dialed it.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}

	return r.client.Close()
}
