package aggregator_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legallyai/jobboard-service/internal/aggregator"
	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/provider"
)

// fakeProvider is a provider.Provider whose Search is scripted per test.
type fakeProvider struct {
	name         string
	unconfigured bool
	calls        atomic.Int32
	search       func(ctx context.Context, call int32) ([]model.Job, error)
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return !f.unconfigured }

func (f *fakeProvider) Search(ctx context.Context, _ model.SearchParams) ([]model.Job, error) {
	n := f.calls.Add(1)
	if f.search == nil {
		return nil, nil
	}
	return f.search(ctx, n)
}

func returning(jobs ...model.Job) func(context.Context, int32) ([]model.Job, error) {
	return func(context.Context, int32) ([]model.Job, error) { return jobs, nil }
}

func job(title, company, source, posted string) model.Job {
	return model.Job{ID: source + "-" + title, Title: title, Company: company, Source: source, Posted: posted}
}

func newAggregator(ps ...provider.Provider) *aggregator.Aggregator {
	return aggregator.New(ps, nil,
		aggregator.WithTimeout(time.Second),
		aggregator.WithRetryDelay(time.Millisecond))
}

// ── Merge and dedupe ───────────────────────────────────────────────────────

func TestSearch_DedupeKeepsFirstProvider(t *testing.T) {
	a := &fakeProvider{name: "A", search: returning(
		job("Litigation Associate", "Acme LLP", "A", "Today"),
	)}
	b := &fakeProvider{name: "B", search: returning(
		job("LITIGATION ASSOCIATE", "acme llp", "B", "Today"),
		job("Paralegal", "Acme LLP", "B", "Today"),
	)}

	resp := newAggregator(a, b).Search(context.Background(), model.SearchParams{})

	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "A", resp.Jobs[0].Source)
	assert.Equal(t, "Paralegal", resp.Jobs[1].Title)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"A", "B"}, resp.Sources)
	assert.False(t, resp.Fallback)
}

func TestSearch_NoDuplicateKeysInOutput(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 30; i++ {
		jobs = append(jobs, job(fmt.Sprintf("Role %d", i%10), "Firm", "A", "Today"))
	}
	resp := newAggregator(&fakeProvider{name: "A", search: returning(jobs...)}).
		Search(context.Background(), model.SearchParams{})

	seen := map[string]bool{}
	for _, j := range resp.Jobs {
		assert.False(t, seen[j.DedupeKey()], "duplicate %s", j.DedupeKey())
		seen[j.DedupeKey()] = true
	}
	assert.Equal(t, 10, resp.Total)
}

func TestSearch_CapsAtFiftyAndReportsDedupedTotal(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 70; i++ {
		jobs = append(jobs, job(fmt.Sprintf("Attorney %d", i), "Firm", "A", "Today"))
	}
	jobs = append(jobs, jobs[0]) // duplicate, not counted

	resp := newAggregator(&fakeProvider{name: "A", search: returning(jobs...)}).
		Search(context.Background(), model.SearchParams{})

	assert.Len(t, resp.Jobs, model.MaxResults)
	assert.Equal(t, 70, resp.Total)
}

func TestSearch_ExcludeDropsRedFlaggedJobs(t *testing.T) {
	a := &fakeProvider{name: "A", search: returning(
		job("Unpaid Legal Intern", "Firm", "A", "Today"),
		job("Associate", "Firm", "A", "Today"),
	)}

	resp := newAggregator(a).Search(context.Background(), model.SearchParams{Exclude: []string{"UNPAID"}})

	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Associate", resp.Jobs[0].Title)
}

func TestSearch_ExcludeEverythingKeepsEmptySources(t *testing.T) {
	a := &fakeProvider{name: "A", search: returning(job("Unpaid Legal Intern", "Firm", "A", "Today"))}

	resp := newAggregator(a).Search(context.Background(), model.SearchParams{Exclude: []string{"unpaid"}})

	assert.Empty(t, resp.Jobs)
	assert.False(t, resp.Fallback)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sources":[]`)
	assert.Contains(t, string(raw), `"jobs":[]`)
}

// ── Sorting ────────────────────────────────────────────────────────────────

func TestSearch_SortIsStableByRecency(t *testing.T) {
	a := &fakeProvider{name: "A", search: returning(
		job("First Today", "X", "A", "Today"),
		job("Three Weeks", "X", "A", "3 weeks ago"),
		job("Yesterday", "X", "A", "1 day ago"),
		job("Second Today", "X", "A", "Today"),
	)}

	resp := newAggregator(a).Search(context.Background(), model.SearchParams{})

	var titles []string
	for _, j := range resp.Jobs {
		titles = append(titles, j.Title)
	}
	assert.Equal(t, []string{"First Today", "Second Today", "Yesterday", "Three Weeks"}, titles)
}

func TestRecencyRank(t *testing.T) {
	assert.Equal(t, 0, aggregator.RecencyRank("Today"))
	assert.Equal(t, 1, aggregator.RecencyRank("1 day ago"))
	assert.Equal(t, 6, aggregator.RecencyRank("6 days ago"))
	assert.Greater(t, aggregator.RecencyRank("1 week ago"), aggregator.RecencyRank("6 days ago"))
	assert.Equal(t, aggregator.RecencyRank("Recently"), aggregator.RecencyRank("2 months ago"))
}

// ── Fallback ───────────────────────────────────────────────────────────────

func TestSearch_FallbackWhenNothingConfigured(t *testing.T) {
	a := &fakeProvider{name: "A", unconfigured: true}
	b := &fakeProvider{name: "B", unconfigured: true}

	resp := newAggregator(a, b).Search(context.Background(), model.SearchParams{})

	assert.Len(t, resp.Jobs, model.FallbackCount)
	assert.Equal(t, model.FallbackCount, resp.Total)
	assert.True(t, resp.Fallback)
	assert.Equal(t, []string{aggregator.FallbackSource}, resp.Sources)
	assert.Equal(t, map[string]model.SourceStatus{
		"A": model.StatusUnavailable,
		"B": model.StatusUnavailable,
	}, resp.Providers)
	assert.Zero(t, a.calls.Load(), "unconfigured provider must not be called")
}

func TestSearch_FallbackWhenProvidersReturnNothing(t *testing.T) {
	resp := newAggregator(&fakeProvider{name: "A"}).Search(context.Background(), model.SearchParams{})

	assert.True(t, resp.Fallback)
	assert.Len(t, resp.Jobs, model.FallbackCount)
	assert.Equal(t, model.StatusOK, resp.Providers["A"])
}

func TestSearch_FallbackUnknownPracticeAreaIsEmpty(t *testing.T) {
	resp := newAggregator(&fakeProvider{name: "A", unconfigured: true}).
		Search(context.Background(), model.SearchParams{PracticeArea: "Maritime Law"})

	assert.Empty(t, resp.Jobs)
	assert.Equal(t, 0, resp.Total)
	assert.True(t, resp.Fallback)
}

func TestFallback_Deterministic(t *testing.T) {
	first := aggregator.Fallback(model.SearchParams{})
	second := aggregator.Fallback(model.SearchParams{})
	assert.Equal(t, first, second)
	require.Len(t, first, model.FallbackCount)

	seen := map[string]bool{}
	for _, j := range first {
		assert.Equal(t, aggregator.FallbackSource, j.Source)
		assert.False(t, seen[j.DedupeKey()])
		seen[j.DedupeKey()] = true
	}
}

func TestFallback_FilterConjunction(t *testing.T) {
	all := aggregator.Fallback(model.SearchParams{})

	byArea := aggregator.Fallback(model.SearchParams{PracticeArea: "litigation"})
	require.NotEmpty(t, byArea)
	for _, j := range byArea {
		assert.Equal(t, "Litigation", j.PracticeArea)
	}

	byAreaAndType := aggregator.Fallback(model.SearchParams{PracticeArea: "Litigation", JobType: "Part Time"})
	for _, j := range byAreaAndType {
		assert.Equal(t, "Litigation", j.PracticeArea)
		assert.Equal(t, "part-time", j.Type)
	}
	assert.Less(t, len(byAreaAndType), len(all))

	byQuery := aggregator.Fallback(model.SearchParams{Query: "summit law"})
	require.NotEmpty(t, byQuery)
	for _, j := range byQuery {
		assert.Equal(t, "Summit Law Group", j.Company)
	}

	assert.Len(t, aggregator.Fallback(model.SearchParams{PracticeArea: "all", JobType: "all"}), len(all))
}

// ── Failure handling ───────────────────────────────────────────────────────

func TestSearch_GracefulProviderFailure(t *testing.T) {
	broken := &fakeProvider{name: "Broken", search: func(context.Context, int32) ([]model.Job, error) {
		return nil, errors.New("boom")
	}}
	healthy := &fakeProvider{name: "Healthy", search: returning(
		job("Associate", "Firm A", "Healthy", "Today"),
		job("Counsel", "Firm B", "Healthy", "1 day ago"),
	)}

	resp := newAggregator(broken, healthy).Search(context.Background(), model.SearchParams{})

	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Empty(t, resp.Error)
	assert.False(t, resp.Fallback)
	assert.Equal(t, []string{"Healthy"}, resp.Sources)
	assert.Equal(t, model.StatusError, resp.Providers["Broken"])
	assert.Equal(t, model.StatusOK, resp.Providers["Healthy"])
	assert.True(t, resp.HasProviderError())
}

func TestSearch_RetriesTransientErrorOnce(t *testing.T) {
	flaky := &fakeProvider{name: "Flaky", search: func(_ context.Context, call int32) ([]model.Job, error) {
		if call == 1 {
			return nil, &provider.APIError{Provider: "Flaky", StatusCode: http.StatusServiceUnavailable}
		}
		return []model.Job{job("Associate", "Firm", "Flaky", "Today")}, nil
	}}

	resp := newAggregator(flaky).Search(context.Background(), model.SearchParams{})

	assert.Equal(t, int32(2), flaky.calls.Load())
	assert.Equal(t, model.StatusOK, resp.Providers["Flaky"])
	assert.Len(t, resp.Jobs, 1)
}

func TestSearch_DoesNotRetryPermanentError(t *testing.T) {
	denied := &fakeProvider{name: "Denied", search: func(context.Context, int32) ([]model.Job, error) {
		return nil, &provider.APIError{Provider: "Denied", StatusCode: http.StatusUnauthorized}
	}}

	resp := newAggregator(denied).Search(context.Background(), model.SearchParams{})

	assert.Equal(t, int32(1), denied.calls.Load())
	assert.Equal(t, model.StatusError, resp.Providers["Denied"])
	assert.True(t, resp.Fallback)
}

func TestSearch_GivesUpAfterSecondTransientError(t *testing.T) {
	down := &fakeProvider{name: "Down", search: func(context.Context, int32) ([]model.Job, error) {
		return nil, &provider.APIError{Provider: "Down", StatusCode: http.StatusBadGateway}
	}}

	resp := newAggregator(down).Search(context.Background(), model.SearchParams{})

	assert.Equal(t, int32(2), down.calls.Load())
	assert.Equal(t, model.StatusError, resp.Providers["Down"])
}

func TestSearch_SlowProviderTimesOut(t *testing.T) {
	slow := &fakeProvider{name: "Slow", search: func(ctx context.Context, _ int32) ([]model.Job, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	fast := &fakeProvider{name: "Fast", search: returning(job("Associate", "Firm", "Fast", "Today"))}

	agg := aggregator.New([]provider.Provider{slow, fast}, nil, aggregator.WithTimeout(50*time.Millisecond))
	start := time.Now()
	resp := agg.Search(context.Background(), model.SearchParams{})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.StatusError, resp.Providers["Slow"])
	assert.Equal(t, int32(1), slow.calls.Load(), "deadline errors are not retried")
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Fast", resp.Jobs[0].Source)
}

func TestSearch_ProvidersRunConcurrently(t *testing.T) {
	// Each provider waits for the other to start; run sequentially, both
	// would hit the deadline.
	var started sync.WaitGroup
	started.Add(2)
	rendezvous := func(name string) func(context.Context, int32) ([]model.Job, error) {
		return func(ctx context.Context, _ int32) ([]model.Job, error) {
			started.Done()
			done := make(chan struct{})
			go func() { started.Wait(); close(done) }()
			select {
			case <-done:
				return []model.Job{job("Associate "+name, "Firm", name, "Today")}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	a := &fakeProvider{name: "A", search: rendezvous("A")}
	b := &fakeProvider{name: "B", search: rendezvous("B")}

	resp := newAggregator(a, b).Search(context.Background(), model.SearchParams{})

	assert.Equal(t, model.StatusOK, resp.Providers["A"])
	assert.Equal(t, model.StatusOK, resp.Providers["B"])
	assert.Equal(t, 2, resp.Total)
}

// ── Source filter ──────────────────────────────────────────────────────────

func TestSearch_SourceSelectsOneProvider(t *testing.T) {
	a := &fakeProvider{name: "Adzuna", search: returning(job("Associate", "Firm", "Adzuna", "Today"))}
	b := &fakeProvider{name: "Jooble", search: returning(job("Counsel", "Firm", "Jooble", "Today"))}

	resp := newAggregator(a, b).Search(context.Background(), model.SearchParams{Source: "jooble"})

	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Jooble", resp.Jobs[0].Source)
	assert.Zero(t, a.calls.Load())
	assert.NotContains(t, resp.Providers, "Adzuna")
}

func TestSearch_SourceAllQueriesEveryProvider(t *testing.T) {
	a := &fakeProvider{name: "Adzuna", search: returning(job("Associate", "Firm", "Adzuna", "Today"))}
	b := &fakeProvider{name: "Jooble", search: returning(job("Counsel", "Firm", "Jooble", "Today"))}

	resp := newAggregator(a, b).Search(context.Background(), model.SearchParams{Source: "all"})

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"Adzuna", "Jooble"}, resp.Sources)
}
