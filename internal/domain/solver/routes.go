package solver

// Solve statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Route is a single vehicle tour. WaypointIDs is the visit order including
// the depot at both ends. Distances are meters; durations are seconds.
type Route struct {
	VehicleID     string                 `json:"vehicle_id"`
	WaypointIDs   []string               `json:"waypoint_ids"`
	NodeIndexes   []int                  `json:"node_indexes,omitempty"`
	TotalDistance float64                `json:"total_distance"`
	TotalDuration *int64                 `json:"total_duration"`
	TotalLoad     int64                  `json:"total_load,omitempty"`
	EmissionsKg   *float64               `json:"emissions_kg,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Stops returns the number of customer visits, excluding the depot ends.
func (r *Route) Stops() int {
	n := len(r.NodeIndexes)
	if n >= 2 {
		return n - 2
	}
	return 0
}

// Routes is the engine result: one Route per used vehicle plus the indexes of
// nodes deliberately left unserved when dropping was allowed.
type Routes struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Routes  []Route `json:"routes"`
	Dropped []int   `json:"dropped,omitempty"`

	TotalDistance  float64  `json:"total_distance"`
	TotalDuration  *int64   `json:"total_duration,omitempty"`
	TotalEmissions *float64 `json:"total_emissions,omitempty"`
}

// Success reports whether the engine produced a usable solution.
func (rs *Routes) Success() bool {
	return rs.Status == StatusSuccess
}

// VehiclesUsed counts routes with at least one customer visit.
func (rs *Routes) VehiclesUsed() int {
	used := 0
	for i := range rs.Routes {
		if rs.Routes[i].Stops() > 0 {
			used++
		}
	}
	return used
}

// ServedNodes counts distinct customer visits across all routes.
func (rs *Routes) ServedNodes() int {
	served := 0
	for i := range rs.Routes {
		served += rs.Routes[i].Stops()
	}
	return served
}
