package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application business metrics.
type Metrics struct {
	UploadsTotal  prometheus.Counter
	FilterActions *prometheus.CounterVec
	EmailsSent    prometheus.Counter
	EmailsFailed  prometheus.Counter
}

// NewMetrics registers the business metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UploadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "csvdesk_uploads_total",
			Help: "Number of successfully stored uploads.",
		}),
		FilterActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csvdesk_filter_actions_total",
			Help: "Number of filter requests by action.",
		}, []string{"action"}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "csvdesk_emails_sent_total",
			Help: "Number of summary emails delivered.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "csvdesk_emails_failed_total",
			Help: "Number of summary emails that failed to send.",
		}),
	}
}
