// Package provider implements the adapters for the external job-search
// APIs. Each adapter turns SearchParams into one request against its API and
// maps the response into canonical model.Job records.
//
// Adapters hold no mutable state besides their rate limiter and are safe for
// concurrent use.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

// Provider is one external job source.
type Provider interface {
	// Name is the human-readable label stamped on every Job's Source.
	Name() string
	// Configured reports whether the credentials the provider needs are set.
	Configured() bool
	// Search fetches one page of listings. An unconfigured provider returns
	// (nil, nil) without touching the network.
	Search(ctx context.Context, p model.SearchParams) ([]model.Job, error)
}

// ErrUnconfigured is reported for a provider whose credentials are missing.
// Adapters themselves return (nil, nil); callers that need to tell the two
// cases apart check Configured and use this sentinel.
var ErrUnconfigured = errors.New("provider not configured")

// domainBias is appended to every outbound query so generic job APIs return
// legal postings.
const domainBias = "attorney lawyer"

// userTerms joins the free-text query and the practice-area filter.
func userTerms(p model.SearchParams) string {
	parts := make([]string, 0, 2)
	if p.Query != "" {
		parts = append(parts, p.Query)
	}
	if p.PracticeArea != "" && !strings.EqualFold(p.PracticeArea, "all") {
		parts = append(parts, p.PracticeArea)
	}
	return strings.Join(parts, " ")
}

// legalQuery is userTerms with the domain bias appended, for providers that
// take a single keyword string.
func legalQuery(p model.SearchParams) string {
	if terms := userTerms(p); terms != "" {
		return terms + " " + domainBias
	}
	return domainBias
}

// jobTypeFilter returns the normalised job-type filter, or "" when the
// caller asked for any type.
func jobTypeFilter(p model.SearchParams) string {
	t := enrich.NormalizeJobType(p.JobType)
	if t == "all" {
		return ""
	}
	return t
}

// pageOf returns the requested page, never less than 1.
func pageOf(p model.SearchParams) int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// APIError is returned when a provider answers with a non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the status is worth retrying.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTemporary reports whether err is a transient failure: a retryable
// APIError or a transport error. Decoding errors and 4xx responses are not
// retried, nor is a cancelled or expired context.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// TransportError wraps a failure to get any HTTP response at all.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Provider, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }
