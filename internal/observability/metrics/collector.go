// Package metrics is the explicit metrics collaborator injected into
// the orchestrator and the HTTP surface. All counters are updated by
// explicit calls at request and round boundaries; there is no hidden
// module state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the service exposes. Each Collector
// carries its own registry, so tests can create them freely.
type Collector struct {
	registry *prometheus.Registry

	DebatesStarted  prometheus.Counter
	DebatesFinished *prometheus.CounterVec
	RoundsPerDebate prometheus.Histogram
	ProviderLatency *prometheus.HistogramVec
	ProviderErrors  *prometheus.CounterVec
	ActiveStreams   prometheus.Gauge
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		DebatesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "symposium",
			Name: "debates_started_total",
			Help: "Total debates started",
		}),
		DebatesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "symposium",
				Name: "debates_finished_total",
				Help: "Total debates finished, by terminal status",
			},
			[]string{"status"},
		),
		RoundsPerDebate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "symposium",
			Name:    "debate_rounds",
			Help:    "Rounds conducted per debate",
			Buckets: []float64{1, 2, 3},
		}),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "symposium",
				Name:    "llm_provider_latency_seconds",
				Help:    "LLM provider call latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "symposium",
				Name: "llm_provider_errors_total",
				Help: "Total failed LLM provider calls",
			},
			[]string{"provider"},
		),
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "symposium",
			Name: "active_debate_streams",
			Help: "Debate event streams currently open",
		}),
	}

	c.registry.MustRegister(
		c.DebatesStarted,
		c.DebatesFinished,
		c.RoundsPerDebate,
		c.ProviderLatency,
		c.ProviderErrors,
		c.ActiveStreams,
	)

	return c
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
