package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool builds the shared connection pool and verifies connectivity.
// Pool sizing (max_conns etc.) is tunable through the DSN; pgx defaults are
// fine for a single-process deployment.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
