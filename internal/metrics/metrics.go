// README: Prometheus collectors for the pipeline, the model gateway and the HTTP layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so tests and binaries never share global state.
type Metrics struct {
	registry *prometheus.Registry

	PipelineRuns   *prometheus.CounterVec
	GatewayLatency prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec
	RateLimited    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgen",
			Name:      "pipeline_runs_total",
			Help:      "Itinerary pipeline runs by outcome.",
		}, []string{"outcome"}),
		GatewayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tripgen",
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of generative model calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripgen",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripgen",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
	m.registry.MustRegister(
		m.PipelineRuns,
		m.GatewayLatency,
		m.HTTPRequests,
		m.RateLimited,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) ObservePipeline(outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGateway(d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}

func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}
