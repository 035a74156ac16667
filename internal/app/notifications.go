package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/mailer"
	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/notification"
	"github.com/stemsi/cyberassess-backend/internal/worker"
)

const memoryQueueSize = 256

// Notifications is the fan-out pipeline: dispatcher, queue and worker.
type Notifications struct {
	Mailer     *mailer.SMTPMailer
	Queue      notification.Queue
	Dispatcher *notification.Dispatcher
	Worker     *worker.NotificationWorker
}

// NewNotifications builds the pipeline. rdb may be nil, in which case jobs go
// through an in-process queue and no live feed events are published.
func NewNotifications(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics, log zerolog.Logger) *Notifications {
	mail := mailer.NewSMTPMailer(cfg.SMTP, cfg.NotifyTimeout, log)
	if !mail.Enabled() {
		log.Warn().Msg("SMTP not configured; email notifications are disabled")
	}

	var (
		queue     notification.Queue
		publisher notification.Publisher
	)
	if rdb != nil {
		queue = notification.NewRedisQueue(rdb, config.CacheKey.NotificationQueueKey(config.WorkerKey.NotificationQueue))
		publisher = notification.NewRedisPublisher(rdb, config.CacheKey.SubmissionFeedChannel())
	} else {
		queue = notification.NewMemoryQueue(memoryQueueSize)
	}

	channels := []notification.Channel{
		notification.NewInternalChannel(mail, cfg.SMTP.To),
		notification.NewUserChannel(mail),
	}
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name()
	}

	return &Notifications{
		Mailer: mail,
		Queue:  queue,
		Dispatcher: notification.NewDispatcher(notification.DispatcherConfig{
			Queue:       queue,
			Channels:    names,
			MailEnabled: mail.Enabled(),
			Publisher:   publisher,
			Metrics:     m,
		}, log),
		Worker: worker.NewNotificationWorker(queue, channels, cfg.NotifyTimeout, m, log),
	}
}
