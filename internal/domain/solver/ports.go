package solver

import "context"

// FieldRequirement marks how an engine treats a request field for a problem
// class.
type FieldRequirement string

const (
	FieldRequired FieldRequirement = "required"
	FieldOptional FieldRequirement = "optional"
	FieldIgnored  FieldRequirement = "ignored"
)

// Capabilities describes what an engine can consume, keyed by problem class
// (TSP, CVRP, VRPTW, PDPTW) then by request field name.
type Capabilities struct {
	// CoordinateMode engines route on waypoint coordinates and do not
	// require a matrix.
	CoordinateMode bool `json:"coordinate_mode"`

	// SupportsDrop reports whether the engine honors Options.AllowDrop.
	SupportsDrop bool `json:"supports_drop"`

	// Problems maps problem class to the per-field requirements.
	Problems map[string]map[string]FieldRequirement `json:"problems"`
}

// Engine is the uniform solving port. Implementations must honor ctx
// cancellation, return typed errors from internal/domain/shared, and convert
// their own panics into EngineError before the facade sees them.
type Engine interface {
	Name() string
	Capabilities() Capabilities
	Solve(ctx context.Context, inst *Instance) (*Routes, error)
}
