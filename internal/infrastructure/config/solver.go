package config

// SolverConfig holds dispatch-level solver settings. Engine time budgets and
// the vehicle fixed cost are request options with fixed defaults; this section
// only carries knobs that apply to every solve.
type SolverConfig struct {
	// CostPerKm writes a monetary cost figure into each route's metadata
	// when positive. Zero disables cost enrichment.
	CostPerKm float64 `mapstructure:"cost_per_km" validate:"min=0"`
}
