// Package metrics exposes Prometheus instrumentation for the scheduler
// and the delivery queue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for mailward
type Metrics struct {
	CampaignsRunTotal     prometheus.Counter
	CampaignsSkippedTotal prometheus.Counter
	MessagesEnqueuedTotal *prometheus.CounterVec
	MessagesSentTotal     prometheus.Counter
	MessagesFailedTotal   prometheus.Counter

	QueueDepth *prometheus.GaugeVec

	TickDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CampaignsRunTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailward_campaigns_run_total",
			Help: "Total number of campaign trigger firings",
		}),
		CampaignsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailward_campaigns_skipped_total",
			Help: "Total number of campaigns skipped for a missing account or template",
		}),
		MessagesEnqueuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailward_messages_enqueued_total",
				Help: "Total number of messages enqueued for delivery",
			},
			[]string{"source"},
		),
		MessagesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailward_messages_sent_total",
			Help: "Total number of successfully delivered messages",
		}),
		MessagesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailward_messages_failed_total",
			Help: "Total number of failed delivery attempts",
		}),
		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mailward_queue_depth",
				Help: "Number of messages in the queue by status",
			},
			[]string{"status"},
		),
		TickDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailward_tick_duration_seconds",
				Help:    "Duration of scheduler ticks",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tick"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.CampaignsRunTotal,
		m.CampaignsSkippedTotal,
		m.MessagesEnqueuedTotal,
		m.MessagesSentTotal,
		m.MessagesFailedTotal,
		m.QueueDepth,
		m.TickDurationSeconds,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
