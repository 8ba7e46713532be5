package statusapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// adapterProvides declares which matrix metrics each adapter can return.
// Providers carry no self-description, so the sheet lives here keyed by
// registry name; adapters registered under a name this table does not know
// are listed by ListAdaptersQuery but omitted from the capability report.
var adapterProvides = map[string][]string{
	"euclidean":  {"matrix.distances"},
	"haversine":  {"matrix.distances"},
	"localgraph": {"matrix.distances", "matrix.durations"},
	"mapbox":     {"matrix.distances", "matrix.durations"},
	"google":     {"matrix.distances", "matrix.durations"},
	"ors":        {"matrix.distances", "matrix.durations"},
}

// CapabilitiesQuery asks what the registered engines and adapters can do.
type CapabilitiesQuery struct{}

// SolverCapability is one engine's capability sheet.
type SolverCapability struct {
	Name string `json:"name"`
	solver.Capabilities
}

// AdapterCapability names the matrix metrics one adapter can return.
type AdapterCapability struct {
	Name     string   `json:"name"`
	Provides []string `json:"provides"`
}

// CapabilitiesResponse carries the capability sheets of every registered
// engine and adapter, sorted by name.
type CapabilitiesResponse struct {
	Solvers  []SolverCapability  `json:"solvers"`
	Adapters []AdapterCapability `json:"adapters"`
}

// CapabilitiesHandler assembles the capability report from both registries.
type CapabilitiesHandler struct {
	engines   *registry.Registry[solver.Engine]
	providers *registry.Registry[matrix.Provider]
}

func NewCapabilitiesHandler(engines *registry.Registry[solver.Engine], providers *registry.Registry[matrix.Provider]) *CapabilitiesHandler {
	return &CapabilitiesHandler{engines: engines, providers: providers}
}

func (h *CapabilitiesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*CapabilitiesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CapabilitiesQuery")
	}

	resp := &CapabilitiesResponse{
		Solvers:  make([]SolverCapability, 0, h.engines.Len()),
		Adapters: make([]AdapterCapability, 0, h.providers.Len()),
	}
	for _, name := range h.engines.Names() {
		eng, err := h.engines.Get(name)
		if err != nil {
			// A factory that cannot construct its engine right now still
			// counts as registered; it just has no sheet to show.
			continue
		}
		resp.Solvers = append(resp.Solvers, SolverCapability{Name: name, Capabilities: eng.Capabilities()})
	}
	for _, name := range h.providers.Names() {
		provides, ok := adapterProvides[name]
		if !ok {
			continue
		}
		resp.Adapters = append(resp.Adapters, AdapterCapability{Name: name, Provides: provides})
	}
	return resp, nil
}
