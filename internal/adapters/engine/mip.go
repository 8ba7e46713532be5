package engine

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// mipLargeInstanceNodes is the node count above which the default time budget
// jumps to the full fifteen minutes.
const (
	mipLargeInstanceNodes     = 80
	mipLargeInstanceTimeLimit = 900
)

// MIPEngine solves the three-index arc formulation exactly: LP relaxations
// via the simplex method, explored by best-first branch-and-bound. It proves
// optimality or infeasibility at a cost that grows quickly with instance
// size, so it suits small fleets where a certificate matters.
type MIPEngine struct{}

// NewMIPEngine creates the exact backend.
func NewMIPEngine() *MIPEngine {
	return &MIPEngine{}
}

// Name implements solver.Engine.
func (e *MIPEngine) Name() string {
	return NameMIP
}

// Capabilities implements solver.Engine.
func (e *MIPEngine) Capabilities() solver.Capabilities {
	return capabilityTable[NameMIP]
}

// Solve implements solver.Engine.
func (e *MIPEngine) Solve(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
	if inst.Matrix == nil || inst.Matrix.IsEmpty() {
		return nil, shared.NewInputError("matrix", "matrix.distances is required")
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if len(inst.Pairs) > 0 {
		return nil, shared.NewInputError("pickup_delivery_pairs", "the mip engine does not support pickup and delivery pairs")
	}
	if err := mipPreflight(inst); err != nil {
		return nil, err
	}

	model := newMIPModel(inst)

	limit := inst.Options.EffectiveTimeLimit()
	if inst.Options.TimeLimit == 0 && inst.N >= mipLargeInstanceNodes {
		limit = mipLargeInstanceTimeLimit
	}
	ctxDeadline, hasDeadline := ctx.Deadline()
	deadline := searchDeadline(ctxDeadline, hasDeadline, limit)

	values, outcome, err := branchAndBound(ctx, model, deadline)
	if err != nil {
		return nil, shared.NewEngineError(NameMIP, fmt.Sprintf("relaxation backend failed: %v", err))
	}
	switch outcome {
	case bbInfeasible:
		return nil, shared.NewInfeasibleError("constraints admit no solution with the given fleet/capacity/time windows")
	case bbNoIncumbent:
		return nil, shared.NewEngineStoppedError(NameMIP)
	}

	routes := model.extract(values, outcome)
	if len(routes) == 0 {
		return nil, shared.NewEngineError(NameMIP, "solution carried no usable routes")
	}
	return assemble(inst, routes, nil, outcome), nil
}

// mipPreflight rejects instances that cannot possibly admit a solution, with
// diagnostics naming the offending numbers.
func mipPreflight(inst *solver.Instance) error {
	totalDemand := inst.TotalDemand()
	totalCapacity := inst.TotalCapacity()
	if totalDemand > totalCapacity && !inst.HasUncapacitatedVehicle() {
		capacities := make([]int64, len(inst.Vehicles))
		for i := range inst.Vehicles {
			capacities[i] = inst.Vehicles[i].PrimaryCapacity()
		}
		return shared.NewInfeasibleError(fmt.Sprintf(
			"total demand %d exceeds total vehicle capacity %d (vehicles=%d, capacities=%v); increase capacity or add vehicles",
			totalDemand, totalCapacity, len(inst.Vehicles), capacities))
	}

	travel := travelTimes(inst)
	for i := 0; i < inst.N; i++ {
		if i == inst.DepotIndex {
			continue
		}
		if end := inst.TimeWindows[i].End; end < travel[inst.DepotIndex][i] {
			return shared.NewInfeasibleError(fmt.Sprintf(
				"node %d latest time %d is earlier than shortest travel %d from depot",
				i, end, travel[inst.DepotIndex][i]))
		}
	}
	return nil
}
