package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// New returns a redis-backed tracker using the "idempotency:" key prefix.
func New(client *redis.Client) *StateTracker {
	return &StateTracker{store: redisBackend{client: client}, prefix: defaultPrefix}
}

type redisBackend struct {
	client *redis.Client
}

func (r redisBackend) setNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

func (r redisBackend) get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return v, true, nil
}

func (r redisBackend) set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
