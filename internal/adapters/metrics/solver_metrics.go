package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SolverMetricsCollector handles engine invocation metrics. It implements
// the solve facade's SolveMetrics port.
type SolverMetricsCollector struct {
	solveDuration *prometheus.HistogramVec
	solvesTotal   *prometheus.CounterVec
}

// NewSolverMetricsCollector creates a new solver metrics collector
func NewSolverMetricsCollector() *SolverMetricsCollector {
	return &SolverMetricsCollector{
		// Solve wall time distribution. The upper buckets track the
		// 900 second time-limit ceiling.
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Engine solve wall time distribution",
				Buckets:   []float64{0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0, 900.0},
			},
			[]string{"engine", "status"},
		),

		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solves_total",
				Help:      "Total number of solve invocations by engine and status",
			},
			[]string{"engine", "status"},
		),
	}
}

// Register registers all solver metrics with the given registry
func (c *SolverMetricsCollector) Register(reg *prometheus.Registry) error {
	if c == nil {
		return nil
	}
	return registerAll(reg, c.solveDuration, c.solvesTotal)
}

// RecordSolve records one engine invocation
func (c *SolverMetricsCollector) RecordSolve(engine, status string, seconds float64) {
	if c == nil {
		return
	}

	c.solveDuration.WithLabelValues(engine, status).Observe(seconds)
	c.solvesTotal.WithLabelValues(engine, status).Inc()
}
