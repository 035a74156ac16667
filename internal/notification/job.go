// Package notification fans persisted submissions out to independent,
// best-effort delivery channels through a queue.
package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

// Channel names.
const (
	ChannelInternal = "internal"
	ChannelUser     = "user"
)

// Job is one delivery of one submission to one channel.
type Job struct {
	ID         string           `json:"id"`
	Channel    string           `json:"channel"`
	Submission model.Submission `json:"submission"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
}

// NewJob creates a job for channel.
func NewJob(channel string, s model.Submission) Job {
	return Job{
		ID:         uuid.NewString(),
		Channel:    channel,
		Submission: s,
		EnqueuedAt: time.Now().UTC(),
	}
}
