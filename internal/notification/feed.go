package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

// EventSubmissionCreated is the feed event type for new records.
const EventSubmissionCreated = "submission.created"

// Publisher broadcasts submission events to live listeners.
type Publisher interface {
	Publish(ctx context.Context, ev model.SubmissionEvent) error
}

// RedisPublisher publishes events on a Redis PubSub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on channel.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev model.SubmissionEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

// EventFor builds the feed event for a stored submission.
func EventFor(s model.Submission) model.SubmissionEvent {
	return model.SubmissionEvent{
		Type:            EventSubmissionCreated,
		ID:              s.ID,
		Email:           s.Respondent.Email,
		EnvironmentName: s.Environment.UniqueName,
		Score:           s.Score,
		CreatedAt:       s.CreatedAt,
	}
}
