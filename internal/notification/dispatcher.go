package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

const defaultEnqueueTimeout = 2 * time.Second

// Dispatcher turns a persisted submission into one queued job per channel and
// a feed event. Nothing it does is reported back to the caller.
type Dispatcher struct {
	queue          Queue
	channels       []string
	publisher      Publisher
	mailEnabled    bool
	enqueueTimeout time.Duration
	metrics        *metrics.Metrics
	log            zerolog.Logger
	wg             sync.WaitGroup
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Queue Queue
	// Channels receive one job each. Ignored when MailEnabled is false.
	Channels    []string
	MailEnabled bool
	// Publisher is optional.
	Publisher      Publisher
	EnqueueTimeout time.Duration
	Metrics        *metrics.Metrics
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = defaultEnqueueTimeout
	}
	return &Dispatcher{
		queue:          cfg.Queue,
		channels:       cfg.Channels,
		publisher:      cfg.Publisher,
		mailEnabled:    cfg.MailEnabled,
		enqueueTimeout: cfg.EnqueueTimeout,
		metrics:        cfg.Metrics,
		log:            log.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Notify schedules notifications for s and returns immediately.
func (d *Dispatcher) Notify(s model.Submission) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("submission", s.ID).Msg("notification dispatch panicked")
			}
		}()

		d.dispatch(s)
	}()
}

// Wait blocks until every scheduled dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// dispatch gives every channel and the feed their own enqueue budget.
func (d *Dispatcher) dispatch(s model.Submission) {
	if d.mailEnabled {
		for _, ch := range d.channels {
			job := NewJob(ch, s)
			if err := d.enqueue(job); err != nil {
				d.metrics.ObserveDrop("enqueue_failed")
				d.log.Error().Err(err).
					Str("channel", ch).
					Str("submission", s.ID).
					Msg("failed to enqueue notification")
				continue
			}
			d.log.Debug().Str("channel", ch).Str("job", job.ID).Msg("notification queued")
		}
	} else {
		d.log.Info().Str("submission", s.ID).Msg("notifications skipped: SMTP not configured")
	}

	if d.publisher != nil {
		if err := d.publish(EventFor(s)); err != nil {
			d.log.Warn().Err(err).Str("submission", s.ID).Msg("failed to publish feed event")
		}
	}
}

func (d *Dispatcher) enqueue(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.enqueueTimeout)
	defer cancel()
	return d.queue.Enqueue(ctx, job)
}

func (d *Dispatcher) publish(ev model.SubmissionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.enqueueTimeout)
	defer cancel()
	return d.publisher.Publish(ctx, ev)
}
