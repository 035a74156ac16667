package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/notification"
)

const (
	NotificationPollTimeout  = 1 * time.Second
	NotificationDrainTimeout = 10 * time.Second
	notificationErrorBackoff = 500 * time.Millisecond
)

// NotificationWorker delivers queued notification jobs. Every job gets exactly
// one attempt; failures are logged and the job is dropped.
type NotificationWorker struct {
	queue    notification.Queue
	channels map[string]notification.Channel
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewNotificationWorker(queue notification.Queue, channels []notification.Channel, timeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *NotificationWorker {
	byName := make(map[string]notification.Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &NotificationWorker{
		queue:    queue,
		channels: byName,
		timeout:  timeout,
		metrics:  m,
		log:      log.With().Str("component", "notification_worker").Str("queue", queue.Name()).Logger(),
	}
}

// Start consumes jobs until ctx is cancelled, then drains what is left.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotificationWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining notification queue...")
			w.drain()
			return

		default:
			job, err := w.queue.Dequeue(ctx, NotificationPollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("dequeue error")
					time.Sleep(notificationErrorBackoff)
				}
				continue
			}
			if job == nil {
				continue
			}
			w.deliver(ctx, job)
		}
	}
}

// drain delivers jobs still queued at shutdown, bounded by NotificationDrainTimeout.
func (w *NotificationWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), NotificationDrainTimeout)
	defer cancel()

	for ctx.Err() == nil {
		job, err := w.queue.Dequeue(ctx, 10*time.Millisecond)
		if err != nil || job == nil {
			return
		}
		w.deliver(ctx, job)
	}
}

func (w *NotificationWorker) deliver(parent context.Context, job *notification.Job) {
	log := w.log.With().
		Str("job", job.ID).
		Str("channel", job.Channel).
		Str("submission", job.Submission.ID).
		Logger()

	ch, ok := w.channels[job.Channel]
	if !ok {
		w.metrics.ObserveDrop("unknown_channel")
		log.Error().Msg("no channel registered for job, dropping")
		return
	}

	// Delivery survives worker shutdown but never outlives the timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), w.timeout)
	defer cancel()

	start := time.Now()
	err := ch.Send(ctx, job.Submission)
	w.metrics.ObserveNotification(job.Channel, err)
	if err != nil {
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("notification failed, dropping")
		return
	}
	log.Info().Dur("took", time.Since(start)).Dur("queued_for", start.Sub(job.EnqueuedAt)).Msg("notification sent")
}
