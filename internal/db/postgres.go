// Package db opens the optional Postgres pool and Redis client used for
// search logging and response caching.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgMaxConns    = 10
	pgMaxIdleTime = 5 * time.Minute
	pingTimeout   = 5 * time.Second
)

// NewPostgresPool parses databaseURL, opens a pool and verifies it with a
// ping. The pool is closed again if the ping fails.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = pgMaxConns
	cfg.MaxConnIdleTime = pgMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}
