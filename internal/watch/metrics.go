package watch

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes pass outcomes for the unattended trigger. The bastion is
// the only scrape target; the interactive path reports synchronously and
// carries no metrics.
type Metrics struct {
	passes    *prometheus.CounterVec
	mutations prometheus.Counter
	lastPass  prometheus.Gauge
	duration  prometheus.Histogram
}

// NewMetrics creates and registers the watch metrics on a fresh registry.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "k8gcp_reconcile_passes_total",
			Help: "Reconciliation passes by outcome.",
		}, []string{"outcome"}),
		mutations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "k8gcp_reconcile_mutations_total",
			Help: "Alias mutations successfully applied.",
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "k8gcp_reconcile_last_pass_timestamp_seconds",
			Help: "Unix time of the last completed pass.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "k8gcp_reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(m.passes, m.mutations, m.lastPass, m.duration)
	return m, reg
}

// Observe records one completed pass.
func (m *Metrics) Observe(outcome string, mutated int, duration time.Duration) {
	m.passes.WithLabelValues(outcome).Inc()
	m.mutations.Add(float64(mutated))
	m.lastPass.SetToCurrentTime()
	m.duration.Observe(duration.Seconds())
}

// Handler returns the scrape handler for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
