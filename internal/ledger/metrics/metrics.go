// Package metrics exposes Prometheus instrumentation for validation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the validator.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	Findings    *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// New creates and registers all validator metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemicycle_validation_runs_total",
			Help: "Validation runs by outcome (pass or fail).",
		}, []string{"outcome"}),
		Findings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemicycle_findings_total",
			Help: "Findings reported by validation runs, by category.",
		}, []string{"category"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemicycle_run_duration_seconds",
			Help:    "Wall time of a full validation run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(pass bool, duration time.Duration, conflicts, outOfRange, missing, rowErrors int) {
	outcome := "fail"
	if pass {
		outcome = "pass"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.Findings.WithLabelValues("conflicts").Add(float64(conflicts))
	m.Findings.WithLabelValues("out_of_range_seats").Add(float64(outOfRange))
	m.Findings.WithLabelValues("missing_seats").Add(float64(missing))
	m.Findings.WithLabelValues("row_errors").Add(float64(rowErrors))
	m.RunDuration.Observe(duration.Seconds())
}
