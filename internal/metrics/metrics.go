package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	describes *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		describes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audiodescricao",
			Name:      "describe_requests_total",
			Help:      "Describe requests by backend and outcome.",
		}, []string{"backend", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "audiodescricao",
			Name:      "describe_duration_seconds",
			Help:      "Time spent serving describe requests, including the image fetch and the backend call.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"backend"}),
	}
	m.registry.MustRegister(
		m.describes,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDescribe records one describe request. outcome is "ok" or an error
// kind.
func (m *Metrics) ObserveDescribe(backend, outcome string, elapsed time.Duration) {
	m.describes.WithLabelValues(backend, outcome).Inc()
	m.duration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
