// Package metrics exposes Prometheus instrumentation for the dispatcher and
// its collaborators. All recording methods are nil-safe so metrics stay
// optional for embedders.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registered collectors. Pass to components that record.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	DispatchDuration   *prometheus.HistogramVec
	BackendErrorsTotal *prometheus.CounterVec
	NotificationsTotal prometheus.Counter
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ordermesh",
				Name:      "commands_total",
				Help:      "Total commands dispatched",
			},
			[]string{"state", "command", "outcome"}, // outcome=ok/rejected/error
		),
		DispatchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ordermesh",
				Name:      "dispatch_duration_seconds",
				Help:      "Command dispatch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		BackendErrorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ordermesh",
				Name:      "backend_errors_total",
				Help:      "Backend failures by taxonomy kind",
			},
			[]string{"kind"},
		),
		NotificationsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "ordermesh",
				Name:      "notifications_scheduled_total",
				Help:      "Deferred follow-up messages scheduled",
			},
		),
	}
}

// RecordCommand counts one dispatched command and its duration.
func (m *Metrics) RecordCommand(state, command, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(state, command, outcome).Inc()
	m.DispatchDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordBackendError counts one classified backend failure.
func (m *Metrics) RecordBackendError(kind string) {
	if m == nil {
		return
	}
	m.BackendErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordNotification counts one scheduled follow-up.
func (m *Metrics) RecordNotification() {
	if m == nil {
		return
	}
	m.NotificationsTotal.Inc()
}
