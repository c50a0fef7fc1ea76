// Package metrics exposes Prometheus counters for backend API calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records API call outcomes. It satisfies client.Recorder.
type Collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackspark_api_requests_total",
			Help: "Backend API calls by method and outcome.",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackspark_api_request_duration_seconds",
			Help:    "Backend API call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(c.requests, c.latency)
	return c
}

// ObserveRequest counts one call and records its latency.
func (c *Collector) ObserveRequest(method, outcome string, d time.Duration) {
	c.requests.WithLabelValues(method, outcome).Inc()
	c.latency.WithLabelValues(method).Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
