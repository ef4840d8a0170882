// Package events publishes jobboard notifications on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelJobsSearched carries one message per search served.
const ChannelJobsSearched = "EVENT_JOBS_SEARCHED"

// JobsSearched is the payload published on ChannelJobsSearched.
type JobsSearched struct {
	Type      string    `json:"type"`
	SearchID  string    `json:"searchId"`
	Query     string    `json:"query"`
	Location  string    `json:"location,omitempty"`
	Total     int       `json:"total"`
	Fallback  bool      `json:"fallback"`
	Cached    bool      `json:"cached"`
	Sources   []string  `json:"sources"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes events to Redis.
type Publisher struct {
	rdb redis.Cmdable
}

// NewPublisher returns a Publisher on rdb.
func NewPublisher(rdb redis.Cmdable) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishJobsSearched publishes evt on ChannelJobsSearched.
func (p *Publisher) PublishJobsSearched(ctx context.Context, evt JobsSearched) error {
	evt.Type = ChannelJobsSearched
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ChannelJobsSearched, err)
	}
	if err := p.rdb.Publish(ctx, ChannelJobsSearched, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelJobsSearched, err)
	}
	return nil
}
