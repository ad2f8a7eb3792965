package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "mdrender"

// Metrics owns a private registry so several servers (and tests) can
// coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	renders    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inputBytes prometheus.Histogram
	requests   *prometheus.CounterVec
}

// NewMetrics creates and registers the render and HTTP collectors plus
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "render_total",
			Help:      "Markdown documents rendered, by endpoint.",
		}, []string{"endpoint"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent in the render pipeline, by endpoint.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"endpoint"}),
		inputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "input_bytes",
			Help:      "Size of Markdown inputs.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(m.renders, m.duration, m.inputBytes, m.requests)
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRender records one pipeline run.
func (m *Metrics) ObserveRender(endpoint string, inputLen int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(endpoint).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.inputBytes.Observe(float64(inputLen))
}

func (m *Metrics) observeRequest(method string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Handler exposes the registry in the Prometheus text or OpenMetrics format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
