package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/aggregator"
	"legallyai/jobboard-service/internal/cache"
	"legallyai/jobboard-service/internal/config"
	"legallyai/jobboard-service/internal/db"
	"legallyai/jobboard-service/internal/events"
	"legallyai/jobboard-service/internal/jobboard"
	"legallyai/jobboard-service/internal/provider"
	"legallyai/jobboard-service/internal/store"
)

// app is the wired service plus whatever must be closed on exit.
type app struct {
	svc     *jobboard.Service
	cached  bool
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newAggregator builds every provider adapter from cfg.
func newAggregator(cfg *config.Config, log *zap.Logger) *aggregator.Aggregator {
	providers := provider.FromConfig(cfg)
	for _, p := range providers {
		log.Info("provider", zap.String("name", p.Name()), zap.Bool("configured", p.Configured()))
	}
	return aggregator.New(providers, log,
		aggregator.WithTimeout(cfg.ProviderTimeout()),
		aggregator.WithRetryDelay(cfg.RetryDelay()))
}

// newApp wires the search service. Redis and Postgres are optional; when a
// URL is set but the backend is unreachable, startup fails.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{}
	var opts []jobboard.Option

	// ── Redis ────────────────────────────────────────────────────────────────
	if cfg.RedisURL != "" {
		log.Info("connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		log.Info("Redis connected ✓")

		opts = append(opts, jobboard.WithPublisher(events.NewPublisher(rdb)))
		if cfg.CacheTTL() > 0 {
			opts = append(opts, jobboard.WithCache(cache.New(rdb, cfg.CacheTTL())))
			a.cached = true
		}
	}

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info("PostgreSQL connected ✓")

		opts = append(opts, jobboard.WithStore(store.New(pool)))
	}

	a.svc = jobboard.NewService(newAggregator(cfg, log), log, opts...)
	return a, nil
}
