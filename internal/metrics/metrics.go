// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	WebfingerRequests *prometheus.CounterVec
	WebfingerDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebfingerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lamia_webfinger_requests_total",
			Help: "Total number of outbound WebFinger lookups by outcome",
		}, []string{"outcome"}),
		WebfingerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lamia_webfinger_request_duration_seconds",
			Help:    "Duration of outbound WebFinger lookups by outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

// ObserveDiscovery records one WebFinger lookup
func (m *Metrics) ObserveDiscovery(outcome string, elapsed time.Duration) {
	m.WebfingerRequests.WithLabelValues(outcome).Inc()
	m.WebfingerDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
