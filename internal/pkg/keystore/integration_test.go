package keystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func TestRedisIntegration(t *testing.T) {
	skipWithoutDocker(t)
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := NewRedisFromURL(ctx, url, "authbite:test:")
	require.NoError(t, err)
	assertRoundTrip(t, s)

	other, err := NewRedisFromURL(ctx, url, "authbite:other:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	var got record
	assert.ErrorIs(t, other.Get(ctx, "devices", &got), ErrNotFound, "prefixes isolate records")
}

func TestPostgresIntegration(t *testing.T) {
	skipWithoutDocker(t)
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("authbite"),
		tcpostgres.WithUsername("authbite"),
		tcpostgres.WithPassword("authbite"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresFromURL(ctx, dsn, "")
	require.NoError(t, err)
	assertRoundTrip(t, s)

	again, err := NewPostgresFromURL(ctx, dsn, DefaultTable)
	require.NoError(t, err, "migration is idempotent")
	t.Cleanup(func() { _ = again.Close() })

	var got record
	require.NoError(t, again.Get(ctx, "devices", &got))
	assert.Equal(t, record{AuthyID: 1, Name: "phone"}, got)
}
