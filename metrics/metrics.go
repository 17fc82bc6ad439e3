package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_mailer_emails_sent_total",
			Help: "Total number of emails accepted by the transport",
		},
		[]string{"type", "transport"},
	)

	EmailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_mailer_emails_failed_total",
			Help: "Total number of recipients that could not be sent or logged",
		},
		[]string{"type", "transport"},
	)

	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "club_mailer_send_duration_seconds",
			Help:    "Duration of a single transport send in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	BatchesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club_mailer_batches_dispatched_total",
			Help: "Total number of dispatch batches run",
		},
		[]string{"type"},
	)
)
