// Package metrics holds the prometheus collectors for the routing daemon.
// Collectors are plain instances owned by the application container; when
// metrics are disabled the container passes nil collectors around and every
// record helper no-ops. There is no package-level registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "routing"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

// NewRegistry creates the daemon's prometheus registry with the standard
// process and Go runtime collectors pre-registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// registerAll registers a collector set, tolerating a nil registry so a
// disabled-metrics build stays a no-op.
func registerAll(reg *prometheus.Registry, cs ...prometheus.Collector) error {
	if reg == nil {
		return nil
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
