// Package metrics records query client activity in a Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcomes.
const (
	OutcomeGraph   = "graph"
	OutcomeMessage = "message"
	OutcomeError   = "error"
)

// Recorder owns a private registry so parallel tests and sessions never
// collide on global collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	fanOut        prometheus.Histogram
	bindings      prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spadequery",
			Name:      "queries_total",
			Help:      "Queries executed, by form and outcome.",
		}, []string{"form", "outcome"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spadequery",
			Name:      "query_duration_seconds",
			Help:      "Wall-clock time of executed queries.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"form"}),
		fanOut: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spadequery",
			Name:      "lineage_fanout_vertices",
			Help:      "Vertices resolved per distributed lineage query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		bindings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "spadequery",
			Name:      "bindings",
			Help:      "Named results currently bound in the session.",
		}),
	}
}

// ObserveQuery records one finished query.
func (r *Recorder) ObserveQuery(form, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.queries.WithLabelValues(form, outcome).Inc()
	r.queryDuration.WithLabelValues(form).Observe(elapsed.Seconds())
}

// ObserveFanOut records the size of one lineage fan-out.
func (r *Recorder) ObserveFanOut(vertices int) {
	if r == nil {
		return
	}
	r.fanOut.Observe(float64(vertices))
}

// SetBindings records the current size of the binding environment.
func (r *Recorder) SetBindings(n int) {
	if r == nil {
		return
	}
	r.bindings.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
