package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRedis struct {
	redis.Cmdable
	channel string
	message []byte
}

func (r *recordingRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	r.channel = channel
	r.message = message.([]byte)
	cmd := redis.NewIntCmd(ctx, "publish", channel)
	cmd.SetVal(1)
	return cmd
}

func TestPublishJobsSearched(t *testing.T) {
	rdb := &recordingRedis{}
	err := NewPublisher(rdb).PublishJobsSearched(context.Background(), JobsSearched{
		SearchID:  "7d1f",
		Query:     "tax",
		Total:     3,
		Sources:   []string{"Adzuna"},
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelJobsSearched, rdb.channel)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rdb.message, &got))
	assert.Equal(t, "EVENT_JOBS_SEARCHED", got["type"])
	assert.Equal(t, "7d1f", got["searchId"])
	assert.EqualValues(t, 3, got["total"])
}
