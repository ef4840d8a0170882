// Package aggregator fans a search out to every provider, merges the
// results and shapes the response envelope.
package aggregator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/provider"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
)

// Aggregator runs one search across a fixed, ordered set of providers.
// It is safe for concurrent use.
type Aggregator struct {
	providers  []provider.Provider
	timeout    time.Duration
	retryDelay time.Duration
	log        *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout bounds each provider call, retry included.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRetryDelay sets the pause before retrying a transient failure.
func WithRetryDelay(d time.Duration) Option {
	return func(a *Aggregator) {
		if d >= 0 {
			a.retryDelay = d
		}
	}
}

// New constructs an Aggregator. providers are queried, and their results
// concatenated, in the order given.
func New(providers []provider.Provider, log *zap.Logger, opts ...Option) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Aggregator{
		providers:  providers,
		timeout:    defaultTimeout,
		retryDelay: defaultRetryDelay,
		log:        log.Named("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Providers returns the providers in query order.
func (a *Aggregator) Providers() []provider.Provider { return a.providers }

// outcome is what one provider produced for one search.
type outcome struct {
	jobs   []model.Job
	status model.SourceStatus
}

// Search never fails: provider errors are logged and reported in the
// status map, and an empty merge is replaced by the synthetic fallback.
func (a *Aggregator) Search(ctx context.Context, p model.SearchParams) model.Response {
	p = p.Normalize()
	selected := a.selectProviders(p.Source)

	// Each goroutine owns one slot; no other shared state.
	outcomes := make([]outcome, len(selected))
	var g errgroup.Group
	for i, prov := range selected {
		i, prov := i, prov
		g.Go(func() error {
			outcomes[i] = a.searchOne(ctx, prov, p)
			return nil
		})
	}
	_ = g.Wait()

	statuses := make(map[string]model.SourceStatus, len(selected))
	var merged []model.Job
	for i, prov := range selected {
		statuses[prov.Name()] = outcomes[i].status
		merged = append(merged, outcomes[i].jobs...)
	}

	fallback := false
	if len(merged) == 0 {
		merged = Fallback(p)
		fallback = true
		a.log.Debug("no provider results, using sample listings",
			zap.Int("count", len(merged)))
	}

	merged = enrich.DropRedFlagged(merged, p.Exclude)
	jobs := Dedupe(merged)
	SortByRecency(jobs)
	total := len(jobs)
	sources := distinctSources(jobs)
	if fallback {
		sources = []string{FallbackSource}
	}
	if len(jobs) > model.MaxResults {
		jobs = jobs[:model.MaxResults]
	}

	return model.Response{
		Jobs:      jobs,
		Total:     total,
		Sources:   sources,
		Providers: statuses,
		Fallback:  fallback,
	}
}

// selectProviders returns every provider, or only those named by source.
func (a *Aggregator) selectProviders(source string) []provider.Provider {
	if source == "" || strings.EqualFold(source, "all") {
		return a.providers
	}
	var out []provider.Provider
	for _, prov := range a.providers {
		if strings.EqualFold(prov.Name(), source) {
			out = append(out, prov)
		}
	}
	return out
}

func (a *Aggregator) searchOne(ctx context.Context, prov provider.Provider, p model.SearchParams) outcome {
	jobs, err := a.call(ctx, prov, p)
	switch {
	case errors.Is(err, provider.ErrUnconfigured):
		return outcome{status: model.StatusUnavailable}
	case err != nil:
		a.log.Warn("provider search failed",
			zap.String("provider", prov.Name()),
			zap.Error(err))
		return outcome{status: model.StatusError}
	}
	return outcome{jobs: jobs, status: model.StatusOK}
}

// call runs one provider search under the per-provider deadline, retrying
// once after retryDelay when the first failure is transient.
func (a *Aggregator) call(ctx context.Context, prov provider.Provider, p model.SearchParams) ([]model.Job, error) {
	if !prov.Configured() {
		return nil, provider.ErrUnconfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	jobs, err := prov.Search(ctx, p)
	if err == nil || !provider.IsTemporary(err) {
		return jobs, err
	}

	a.log.Debug("retrying provider after transient error",
		zap.String("provider", prov.Name()),
		zap.Duration("delay", a.retryDelay),
		zap.Error(err))

	timer := time.NewTimer(a.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, err
	case <-timer.C:
	}
	return prov.Search(ctx, p)
}

// Dedupe drops every job whose lowercased (title, company) pair was already
// seen, keeping the first occurrence.
func Dedupe(jobs []model.Job) []model.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		key := j.DedupeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}

// recencyRank maps the fine-grained recency phrases to sort ranks. Anything
// else sorts after them.
var recencyRank = map[string]int{
	"Today":      0,
	"1 day ago":  1,
	"2 days ago": 2,
	"3 days ago": 3,
	"4 days ago": 4,
	"5 days ago": 5,
	"6 days ago": 6,
}

const unrankedRecency = 7

// RecencyRank returns the sort rank of a posted phrase.
func RecencyRank(posted string) int {
	if r, ok := recencyRank[strings.TrimSpace(posted)]; ok {
		return r
	}
	return unrankedRecency
}

// SortByRecency orders jobs in place by RecencyRank, keeping the input order
// among equal ranks.
func SortByRecency(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return RecencyRank(jobs[i].Posted) < RecencyRank(jobs[j].Posted)
	})
}

func distinctSources(jobs []model.Job) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, j := range jobs {
		if _, ok := seen[j.Source]; ok {
			continue
		}
		seen[j.Source] = struct{}{}
		out = append(out, j.Source)
	}
	return out
}
