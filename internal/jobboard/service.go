// Package jobboard contains the search use case shared by the HTTP and gRPC
// transports: cache lookup, aggregation, and the non-fatal side effects of a
// served search.
package jobboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/aggregator"
	"legallyai/jobboard-service/internal/cache"
	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/events"
	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/provider"
	"legallyai/jobboard-service/internal/store"
)

// ─── Dependencies ────────────────────────────────────────────────────────────

// Searcher runs one aggregated search. *aggregator.Aggregator implements it.
type Searcher interface {
	Search(ctx context.Context, p model.SearchParams) model.Response
	Providers() []provider.Provider
}

// ResponseCache stores search responses. *cache.Cache implements it.
type ResponseCache interface {
	Get(ctx context.Context, p model.SearchParams) (model.Response, error)
	Set(ctx context.Context, p model.SearchParams, resp model.Response) error
}

// SearchLog persists served searches. *store.Store implements it.
type SearchLog interface {
	LogSearch(ctx context.Context, rec store.SearchRecord) error
	RecordListings(ctx context.Context, jobs []model.Job) error
	RecentSearches(ctx context.Context, limit int) ([]store.SearchRecord, error)
}

// Publisher announces served searches. *events.Publisher implements it.
type Publisher interface {
	PublishJobsSearched(ctx context.Context, evt events.JobsSearched) error
}

// ─── Service ─────────────────────────────────────────────────────────────────

// ErrStoreDisabled is returned by RecentSearches when no database is
// configured.
var ErrStoreDisabled = errors.New("search history is disabled")

// Service is the transport-agnostic search use case. Cache, store and
// publisher are optional; a nil one is skipped.
type Service struct {
	searcher  Searcher
	cache     ResponseCache
	store     SearchLog
	publisher Publisher
	log       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables response caching.
func WithCache(c ResponseCache) Option { return func(s *Service) { s.cache = c } }

// WithStore enables the search log and listing snapshots.
func WithStore(st SearchLog) Option { return func(s *Service) { s.store = st } }

// WithPublisher enables EVENT_JOBS_SEARCHED notifications.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// NewService returns a Service around searcher.
func NewService(searcher Searcher, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{searcher: searcher, log: log.Named("jobboard")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search serves one search for userID (empty when unauthenticated). It
// never fails; cache, store and publish errors are logged and dropped.
func (s *Service) Search(ctx context.Context, p model.SearchParams, userID string) model.Response {
	p = p.Normalize()

	resp, cached := s.fromCache(ctx, p)
	if !cached {
		resp = s.searcher.Search(ctx, p)
		if s.cache != nil {
			if err := s.cache.Set(ctx, p, resp); err != nil {
				s.log.Warn("cache write failed", zap.Error(err))
			}
		}
	}

	s.record(ctx, p, resp, cached, userID)
	return resp
}

// Refresh bypasses the cache, runs the search and stores the result. The
// warm-up scheduler uses it.
func (s *Service) Refresh(ctx context.Context, p model.SearchParams) model.Response {
	p = p.Normalize()
	resp := s.searcher.Search(ctx, p)
	if s.cache != nil {
		if err := s.cache.Set(ctx, p, resp); err != nil {
			s.log.Warn("cache write failed", zap.Error(err))
		}
	}
	return resp
}

// RecentSearches returns the newest logged searches.
func (s *Service) RecentSearches(ctx context.Context, limit int) ([]store.SearchRecord, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.RecentSearches(ctx, limit)
}

// ProviderStatus reports, per provider, whether its credentials are set.
func (s *Service) ProviderStatus() map[string]bool {
	ps := s.searcher.Providers()
	out := make(map[string]bool, len(ps))
	for _, p := range ps {
		out[p.Name()] = p.Configured()
	}
	return out
}

// ─── Internals ───────────────────────────────────────────────────────────────

func (s *Service) fromCache(ctx context.Context, p model.SearchParams) (model.Response, bool) {
	if s.cache == nil {
		return model.Response{}, false
	}
	resp, err := s.cache.Get(ctx, p)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("cache read failed", zap.Error(err))
		}
		return model.Response{}, false
	}
	refreshPosted(resp.Jobs)
	return resp, true
}

// refreshPosted re-derives each Posted label from its timestamp, since a
// cached label goes stale, then restores recency order.
func refreshPosted(jobs []model.Job) {
	for i := range jobs {
		if !jobs[i].PostedAt.IsZero() {
			jobs[i].Posted = enrich.Posted(jobs[i].PostedAt)
		}
	}
	aggregator.SortByRecency(jobs)
}

func (s *Service) record(ctx context.Context, p model.SearchParams, resp model.Response, cached bool, userID string) {
	rec := store.NewSearchRecord(p, resp, cached, userID)

	if s.store != nil {
		if err := s.store.LogSearch(ctx, rec); err != nil {
			s.log.Warn("log search failed", zap.Error(err))
		}
		// Synthetic listings are not snapshotted.
		if !cached && !resp.Fallback {
			if err := s.store.RecordListings(ctx, resp.Jobs); err != nil {
				s.log.Warn("record listings failed", zap.Error(err))
			}
		}
	}

	if s.publisher != nil {
		evt := events.JobsSearched{
			SearchID:  rec.ID.String(),
			Query:     p.Query,
			Location:  p.Location,
			Total:     resp.Total,
			Fallback:  resp.Fallback,
			Cached:    cached,
			Sources:   resp.Sources,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
		}
		if err := s.publisher.PublishJobsSearched(ctx, evt); err != nil {
			s.log.Warn("publish "+events.ChannelJobsSearched+" failed", zap.Error(err))
		}
	}

	s.log.Info("search served",
		zap.String("searchId", rec.ID.String()),
		zap.String("query", p.Query),
		zap.Int("total", resp.Total),
		zap.Bool("fallback", resp.Fallback),
		zap.Bool("cached", cached),
		zap.Any("providers", resp.Providers))
}
