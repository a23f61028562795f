package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Side-effect metrics: fan-out is best-effort, failures only show up here
	// and in the logs.
	NotificationsCreated prometheus.Counter
	NotificationsFailed  prometheus.Counter
	WhatsAppSent         prometheus.Counter
	WhatsAppFailed       prometheus.Counter
	EmailsSent           prometheus.Counter
	EmailsFailed         prometheus.Counter
	ProjectionSyncFailed prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path", "status"}),
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrival_notifications_created_total",
			Help:      "Arrival notifications created by the fan-out",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrival_notifications_failed_total",
			Help:      "Arrival notification writes that failed",
		}),
		WhatsAppSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_messages_sent_total",
			Help:      "WhatsApp messages accepted by the transport",
		}),
		WhatsAppFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_messages_failed_total",
			Help:      "WhatsApp sends that failed",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Notification emails sent",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Notification emails that failed",
		}),
		ProjectionSyncFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secretary_projection_sync_failed_total",
			Help:      "Secretary projection syncs that failed",
		}),
	}
}
