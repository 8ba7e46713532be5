// Package journal records completed solve runs for the operations surface:
// the recent-runs endpoint, the CLI and per-engine usage counts.
package journal

import (
	"context"
	"time"
)

// SolveRun is one journaled solver invocation.
type SolveRun struct {
	RequestID     string    `json:"request_id"`
	Engine        string    `json:"engine"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	Waypoints     int       `json:"waypoints"`
	VehiclesUsed  int       `json:"vehicles_used"`
	TotalDistance float64   `json:"total_distance"`
	TotalDuration *int64    `json:"total_duration,omitempty"`
	SolveMillis   int64     `json:"solve_millis"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository persists solve runs.
type Repository interface {
	// Save appends a run record.
	Save(ctx context.Context, run *SolveRun) error

	// Recent returns the newest runs, most recent first.
	Recent(ctx context.Context, limit int) ([]*SolveRun, error)

	// CountByEngine returns the number of journaled runs per engine name.
	CountByEngine(ctx context.Context) (map[string]int64, error)
}
