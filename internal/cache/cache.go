// Package cache stores search responses in Redis, msgpack-encoded and keyed
// by a hash of the normalised search parameters.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const keyPrefix = "jobboard:search:"

// ErrMiss is returned by Get when no cached response exists.
var ErrMiss = errors.New("cache miss")

// Cache is a Redis-backed response cache.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// New returns a Cache writing entries with the given TTL.
func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for p. Parameters that search the same thing
// map to the same key: case, surrounding space, job-type spelling and the
// order of exclude terms are ignored.
func Key(p model.SearchParams) string {
	p = p.Normalize()

	exclude := make([]string, len(p.Exclude))
	for i, term := range p.Exclude {
		exclude[i] = strings.ToLower(term)
	}
	sort.Strings(exclude)

	canonical := strings.Join([]string{
		strings.ToLower(p.Query),
		strings.ToLower(p.Location),
		enrich.NormalizeJobType(p.JobType),
		strings.ToLower(p.PracticeArea),
		strconv.Itoa(p.Page),
		strings.ToLower(p.Source),
		strings.Join(exclude, ","),
	}, "\x1f")
	return fmt.Sprintf("%s%016x", keyPrefix, xxhash.Sum64String(canonical))
}

// Cacheable reports whether resp may be stored. Fallback responses and
// responses missing a failed provider's results are not cached.
func Cacheable(resp model.Response) bool {
	return resp.Error == "" && !resp.Fallback && !resp.HasProviderError() && len(resp.Jobs) > 0
}

// Get returns the cached response for p, or ErrMiss.
func (c *Cache) Get(ctx context.Context, p model.SearchParams) (model.Response, error) {
	raw, err := c.rdb.Get(ctx, Key(p)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Response{}, ErrMiss
	}
	if err != nil {
		return model.Response{}, fmt.Errorf("redis get: %w", err)
	}

	var resp model.Response
	if err := msgpack.Unmarshal(raw, &resp); err != nil {
		return model.Response{}, fmt.Errorf("decode cached response: %w", err)
	}
	return resp, nil
}

// Set stores resp for p. Responses that are not Cacheable are skipped.
func (c *Cache) Set(ctx context.Context, p model.SearchParams, resp model.Response) error {
	if c.ttl <= 0 || !Cacheable(resp) {
		return nil
	}
	raw, err := msgpack.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(p), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
