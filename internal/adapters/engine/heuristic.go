package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// HeuristicEngine is the default backend: cheapest-arc style construction
// followed by local search under a wall-clock budget. It handles capacities,
// time windows, pickup/delivery pairs and optional drops.
type HeuristicEngine struct{}

// NewHeuristicEngine creates the metaheuristic backend.
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{}
}

// Name implements solver.Engine.
func (e *HeuristicEngine) Name() string {
	return NameHeuristic
}

// Capabilities implements solver.Engine.
func (e *HeuristicEngine) Capabilities() solver.Capabilities {
	return capabilityTable[NameHeuristic]
}

// Solve implements solver.Engine.
func (e *HeuristicEngine) Solve(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
	if inst.Matrix == nil || inst.Matrix.IsEmpty() {
		return nil, shared.NewInputError("matrix", "matrix.distances is required")
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	search := newLocalSearch(inst)
	ctxDeadline, hasDeadline := ctx.Deadline()
	deadline := searchDeadline(ctxDeadline, hasDeadline, inst.Options.EffectiveTimeLimit())

	p := search.construct(inst.Options.FirstSolution)
	status := "constructed"
	if !strings.EqualFold(strings.TrimSpace(inst.Options.Metaheuristic), "none") {
		status = search.improve(ctx, p, deadline)
	}

	if len(p.unserved) > 0 && !inst.Options.AllowDrop {
		return nil, shared.NewEngineError(NameHeuristic, fmt.Sprintf(
			"no feasible assignment for %d of %d customers; enable allow_drop, relax time windows or add vehicles",
			len(p.unserved), inst.N-1))
	}

	var routes []solver.Route
	for v := range p.routes {
		if len(p.routes[v]) == 0 {
			continue
		}
		path := make([]int, 0, len(p.routes[v])+2)
		path = append(path, inst.DepotIndex)
		path = append(path, p.routes[v]...)
		path = append(path, inst.DepotIndex)
		routes = append(routes, routeFromPath(inst, inst.Matrix, v, path, map[string]interface{}{
			"search": status,
		}))
	}

	return assemble(inst, routes, sortedKeys(p.unserved), status), nil
}
