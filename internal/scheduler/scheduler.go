// Package scheduler wires up the cron job that periodically refreshes the
// cached results of the configured warm-up queries.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/model"
)

// Refresher re-runs a search and stores its result. *jobboard.Service
// implements it.
type Refresher interface {
	Refresh(ctx context.Context, p model.SearchParams) model.Response
}

// Scheduler wraps robfig/cron and manages the warm-up loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	queries   []model.SearchParams
	spec      string // cron spec, e.g. "@every 1h"
	log       *zap.Logger
	running   sync.Mutex
	initial   sync.WaitGroup
}

// New creates a Scheduler that refreshes queries on spec. Each query is a
// free-text search with no other filters.
func New(refresher Refresher, spec string, queries []string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	params := make([]model.SearchParams, 0, len(queries))
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			params = append(params, model.SearchParams{Query: q, Page: 1})
		}
	}
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		queries:   params,
		spec:      spec,
		log:       log.Named("scheduler"),
	}
}

// Start registers the job and starts the scheduler. Also runs one warm-up
// immediately so the cache is populated without waiting for the first tick.
// With no queries configured it does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.queries) == 0 {
		s.log.Info("no warm-up queries configured, scheduler idle")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec), zap.Int("queries", len(s.queries)))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop stops the scheduler and waits for a running warm-up to finish,
// including the one started by Start.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.log.Info("cron stopped")
}

// RunOnce refreshes every warm-up query in turn. Overlapping runs are
// skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.log.Debug("warm-up already running, skipping tick")
		return
	}
	defer s.running.Unlock()

	s.log.Info("warm-up cycle started", zap.Int("queries", len(s.queries)))
	for _, p := range s.queries {
		if ctx.Err() != nil {
			return
		}
		resp := s.refresher.Refresh(ctx, p)
		s.log.Debug("warmed query",
			zap.String("query", p.Query),
			zap.Int("total", resp.Total),
			zap.Bool("fallback", resp.Fallback))
	}
	s.log.Info("warm-up cycle complete")
}
