package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MatrixMetricsCollector handles matrix adapter metrics. It implements the
// matrix facade's MatrixMetrics port.
type MatrixMetricsCollector struct {
	buildDuration *prometheus.HistogramVec
	buildsTotal   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// NewMatrixMetricsCollector creates a new matrix metrics collector
func NewMatrixMetricsCollector() *MatrixMetricsCollector {
	return &MatrixMetricsCollector{
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_build_duration_seconds",
				Help:      "Matrix build duration distribution by adapter",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"adapter", "status"},
		),

		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_builds_total",
				Help:      "Total number of matrix builds by adapter and status",
			},
			[]string{"adapter", "status"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_cache_lookups_total",
				Help:      "Matrix cache lookups by adapter and result",
			},
			[]string{"adapter", "result"},
		),
	}
}

// Register registers all matrix metrics with the given registry
func (c *MatrixMetricsCollector) Register(reg *prometheus.Registry) error {
	if c == nil {
		return nil
	}
	return registerAll(reg, c.buildDuration, c.buildsTotal, c.cacheLookups)
}

// RecordMatrixBuild records one provider invocation
func (c *MatrixMetricsCollector) RecordMatrixBuild(adapter, status string, seconds float64) {
	if c == nil {
		return
	}

	c.buildDuration.WithLabelValues(adapter, status).Observe(seconds)
	c.buildsTotal.WithLabelValues(adapter, status).Inc()
}

// RecordMatrixCacheLookup records a matrix cache hit or miss
func (c *MatrixMetricsCollector) RecordMatrixCacheLookup(adapter string, hit bool) {
	if c == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(adapter, result).Inc()
}
