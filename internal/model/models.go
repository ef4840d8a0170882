// Package model defines shared data structures for the jobboard service.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Result caps and truncation limits. None of these are configurable.
const (
	MaxResults       = 50
	FallbackCount    = 15
	MaxRequirements  = 5
	MaxSkills        = 3
	DescriptionLimit = 500
)

// NoApplyURL marks a listing without a direct apply link.
const NoApplyURL = "#"

// SearchParams is the inbound search request. Every field is optional; an
// empty value places no constraint on that dimension.
type SearchParams struct {
	Query        string   `json:"query"`
	Location     string   `json:"location"`
	JobType      string   `json:"jobType"`
	PracticeArea string   `json:"practiceArea"`
	Page         int      `json:"page"`
	Source       string   `json:"source"`
	Exclude      []string `json:"exclude,omitempty"` // red-flag terms; any match drops the listing
}

// UnmarshalJSON decodes a request body. page may arrive as a number, a
// numeric string or null; anything that is not a number leaves Page at 0,
// which Normalize turns into 1.
func (p *SearchParams) UnmarshalJSON(data []byte) error {
	type plain SearchParams
	aux := struct {
		*plain
		Page json.RawMessage `json:"page"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Page = looseInt(aux.Page)
	return nil
}

func looseInt(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(f >= 1 && f <= 1e6) {
		return 0
	}
	return int(f)
}

// Normalize trims every string field and coerces Page to at least 1.
func (p SearchParams) Normalize() SearchParams {
	p.Query = strings.TrimSpace(p.Query)
	p.Location = strings.TrimSpace(p.Location)
	p.JobType = strings.TrimSpace(p.JobType)
	p.PracticeArea = strings.TrimSpace(p.PracticeArea)
	p.Source = strings.TrimSpace(p.Source)
	if p.Page < 1 {
		p.Page = 1
	}
	exclude := make([]string, 0, len(p.Exclude))
	for _, term := range p.Exclude {
		if term = strings.TrimSpace(term); term != "" {
			exclude = append(exclude, term)
		}
	}
	p.Exclude = exclude
	return p
}

// Job is the canonical listing every provider (and the fallback generator)
// is normalised into.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Salary       string   `json:"salary"`
	Posted       string   `json:"posted"`
	PracticeArea string   `json:"practiceArea"`
	Experience   string   `json:"experience"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	ApplyURL     string   `json:"applyUrl"`
	Source       string   `json:"source"`
	Logo         string   `json:"logo,omitempty"`

	// PostedAt is the provider timestamp Posted was derived from. It is kept
	// out of the JSON payload but survives the cache so Posted can be
	// re-derived on a cache hit.
	PostedAt time.Time `json:"-" msgpack:"postedAt"`
}

// DedupeKey is the lowercased (title, company) pair used for deduplication.
func (j Job) DedupeKey() string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "|" + strings.ToLower(strings.TrimSpace(j.Company))
}

// SourceStatus reports how a single provider fared for one search.
type SourceStatus string

const (
	StatusOK          SourceStatus = "ok"
	StatusUnavailable SourceStatus = "unavailable"
	StatusError       SourceStatus = "error"
)

// Response is the search envelope returned to clients.
type Response struct {
	Jobs      []Job                   `json:"jobs"`
	Total     int                     `json:"total"`
	Sources   []string                `json:"sources"`
	Providers map[string]SourceStatus `json:"providers,omitempty"`
	Fallback  bool                    `json:"fallback,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// ErrorResponse builds the empty envelope returned when a request cannot be
// processed at all.
func ErrorResponse(msg string) Response {
	return Response{Jobs: []Job{}, Total: 0, Sources: []string{}, Error: msg}
}

// HasProviderError reports whether any provider failed during the search.
func (r Response) HasProviderError() bool {
	for _, st := range r.Providers {
		if st == StatusError {
			return true
		}
	}
	return false
}
