// Package store records served searches and snapshots the listings they
// returned in Postgres.
//
// Expected schema (managed outside this service):
//
//	CREATE TABLE job_searches (
//	    id            uuid PRIMARY KEY,
//	    query         text NOT NULL,
//	    location      text NOT NULL,
//	    job_type      text NOT NULL,
//	    practice_area text NOT NULL,
//	    page          int  NOT NULL,
//	    source        text NOT NULL,
//	    total         int  NOT NULL,
//	    fallback      boolean NOT NULL,
//	    cached        boolean NOT NULL,
//	    sources       text[] NOT NULL,
//	    user_id       text,
//	    created_at    timestamptz NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE job_listings (
//	    id            text PRIMARY KEY,
//	    title         text NOT NULL,
//	    company       text NOT NULL,
//	    location      text NOT NULL,
//	    type          text NOT NULL,
//	    salary        text NOT NULL,
//	    practice_area text NOT NULL,
//	    experience    text NOT NULL,
//	    apply_url     text NOT NULL,
//	    source        text NOT NULL,
//	    posted_at     timestamptz,
//	    first_seen_at timestamptz NOT NULL DEFAULT NOW(),
//	    last_seen_at  timestamptz NOT NULL DEFAULT NOW(),
//	    seen_count    int NOT NULL DEFAULT 1
//	);
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"legallyai/jobboard-service/internal/model"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store writes search logs and listing snapshots.
type Store struct {
	db DB
}

// New returns a Store on db.
func New(db DB) *Store {
	return &Store{db: db}
}

// SearchRecord is one row of job_searches.
type SearchRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Query        string    `db:"query" json:"query"`
	Location     string    `db:"location" json:"location"`
	JobType      string    `db:"job_type" json:"jobType"`
	PracticeArea string    `db:"practice_area" json:"practiceArea"`
	Page         int       `db:"page" json:"page"`
	Source       string    `db:"source" json:"source"`
	Total        int       `db:"total" json:"total"`
	Fallback     bool      `db:"fallback" json:"fallback"`
	Cached       bool      `db:"cached" json:"cached"`
	Sources      []string  `db:"sources" json:"sources"`
	UserID       string    `db:"user_id" json:"userId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// NewSearchRecord builds the log row for one served search.
func NewSearchRecord(p model.SearchParams, resp model.Response, cached bool, userID string) SearchRecord {
	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}
	return SearchRecord{
		ID:           uuid.New(),
		Query:        p.Query,
		Location:     p.Location,
		JobType:      p.JobType,
		PracticeArea: p.PracticeArea,
		Page:         p.Page,
		Source:       p.Source,
		Total:        resp.Total,
		Fallback:     resp.Fallback,
		Cached:       cached,
		Sources:      sources,
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
	}
}

// LogSearch inserts rec into job_searches.
func (s *Store) LogSearch(ctx context.Context, rec SearchRecord) error {
	var userID *string
	if rec.UserID != "" {
		userID = &rec.UserID
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO job_searches
		   (id, query, location, job_type, practice_area, page, source,
		    total, fallback, cached, sources, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Query, rec.Location, rec.JobType, rec.PracticeArea, rec.Page, rec.Source,
		rec.Total, rec.Fallback, rec.Cached, rec.Sources, userID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job_searches: %w", err)
	}
	return nil
}

const upsertListing = `
	INSERT INTO job_listings
	  (id, title, company, location, type, salary, practice_area, experience,
	   apply_url, source, posted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE
	SET title        = EXCLUDED.title,
	    salary       = EXCLUDED.salary,
	    apply_url    = EXCLUDED.apply_url,
	    last_seen_at = NOW(),
	    seen_count   = job_listings.seen_count + 1`

// RecordListings upserts every job in one batch. Already-known ids only
// get their last_seen_at and seen_count bumped.
func (s *Store) RecordListings(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, j := range jobs {
		var postedAt *time.Time
		if !j.PostedAt.IsZero() {
			t := j.PostedAt
			postedAt = &t
		}
		batch.Queue(upsertListing,
			j.ID, j.Title, j.Company, j.Location, j.Type, j.Salary, j.PracticeArea,
			j.Experience, j.ApplyURL, j.Source, postedAt,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range jobs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert job_listings: %w", err)
		}
	}
	return nil
}

// ClampLimit applies the default and maximum to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	}
	return limit
}

// RecentSearches returns the newest searches first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	records := make([]SearchRecord, 0)
	err := pgxscan.Select(ctx, s.db, &records,
		`SELECT id, query, location, job_type, practice_area, page, source,
		        total, fallback, cached, sources, COALESCE(user_id, '') AS user_id, created_at
		 FROM job_searches
		 ORDER BY created_at DESC
		 LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("select job_searches: %w", err)
	}
	return records, nil
}
