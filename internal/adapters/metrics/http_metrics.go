package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsCollector handles inbound HTTP request metrics
type HTTPMetricsCollector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewHTTPMetricsCollector creates a new HTTP metrics collector
func NewHTTPMetricsCollector() *HTTPMetricsCollector {
	return &HTTPMetricsCollector{
		// Total HTTP requests by method, route, and status code
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		// HTTP request duration histogram
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers all HTTP metrics with the given registry
func (c *HTTPMetricsCollector) Register(reg *prometheus.Registry) error {
	if c == nil {
		return nil
	}
	return registerAll(reg, c.httpRequestsTotal, c.httpRequestDuration)
}

// RecordHTTPRequest records an HTTP request completion
func (c *HTTPMetricsCollector) RecordHTTPRequest(
	method string,
	route string,
	statusCode int,
	duration float64,
) {
	if c == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)

	// Increment request counter
	c.httpRequestsTotal.WithLabelValues(method, route, statusCodeStr).Inc()

	// Record request duration
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware wraps an http.Handler and records request count and
// duration. The route label uses the mux pattern that matched, falling back
// to the raw path for unmatched requests. Nil collector passes through.
func HTTPMiddleware(collector *HTTPMetricsCollector, next http.Handler) http.Handler {
	if collector == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		collector.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start).Seconds())
	})
}
