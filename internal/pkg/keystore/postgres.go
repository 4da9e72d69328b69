package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the postgres table used when none is configured.
const DefaultTable = "keystore"

// Postgres stores records in a jsonb column keyed by text.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
	owned bool
}

// NewPostgres wraps an existing pool and creates the table when missing.
// The caller keeps ownership of the pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string) (*Postgres, error) {
	if table == "" {
		table = DefaultTable
	}

	p := &Postgres{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := p.migrate(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// NewPostgresFromURL opens a pool from a connection string, pings it and
// creates the table when missing.
func NewPostgresFromURL(ctx context.Context, url, table string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, backendError("connect", table, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, backendError("ping", table, err)
	}

	p, err := NewPostgres(ctx, pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.owned = true

	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, p.table)

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return backendError("migrate", p.table, err)
	}

	return nil
}

func (p *Postgres) Get(ctx context.Context, key string, out any) error {
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = $1", p.table)

	var data []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return backendError("select", key, err)
	}

	return Unmarshal(data, out)
}

func (p *Postgres) Set(ctx context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, p.table)

	if _, err := p.pool.Exec(ctx, query, key, string(data)); err != nil {
		return backendError("upsert", key, err)
	}

	return nil
}

// Close closes the pool only when the store opened it.
func (p *Postgres) Close() error {
	if p.owned {
		p.pool.Close()
	}

	return nil
}
