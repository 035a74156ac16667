// Package metrics holds the Prometheus collectors of the assessment service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cyberassess"

// Metrics groups the collectors updated by the submission pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	submissions       *prometheus.CounterVec
	attempts          *prometheus.CounterVec
	submitDuration    prometheus.Histogram
	notifications     *prometheus.CounterVec
	notificationDrops *prometheus.CounterVec
}

// MustNewMetrics registers the collectors on reg and panics on duplicate
// registration. Tests pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "submission",
				Name:      "results_total",
				Help:      "Submit calls by final outcome.",
			},
			[]string{"outcome"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "submission",
				Name:      "attempts_total",
				Help:      "Storage attempts made by the submission coordinator, by result.",
			},
			[]string{"result"},
		),
		submitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "submission",
				Name:      "duration_seconds",
				Help:      "Wall time of submit calls including retries.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "deliveries_total",
				Help:      "Notification delivery attempts by channel and result.",
			},
			[]string{"channel", "result"},
		),
		notificationDrops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "dropped_total",
				Help:      "Notification jobs dropped before delivery.",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.submissions, m.attempts, m.submitDuration, m.notifications, m.notificationDrops)
	return m
}

// ObserveSubmission records the outcome and duration of one submit call.
func (m *Metrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.submitDuration.Observe(elapsed.Seconds())
}

// ObserveAttempt records one storage attempt.
func (m *Metrics) ObserveAttempt(result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
}

// ObserveNotification records one delivery attempt.
func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}

// ObserveDrop records a job that never reached a channel.
func (m *Metrics) ObserveDrop(reason string) {
	if m == nil {
		return
	}
	m.notificationDrops.WithLabelValues(reason).Inc()
}
