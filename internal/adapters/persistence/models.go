package persistence

import "time"

// SolveRunModel is the database representation of a journaled solve run.
type SolveRunModel struct {
	ID            int       `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID     string    `gorm:"column:request_id;uniqueIndex;not null"`
	Engine        string    `gorm:"column:engine;index;not null"`
	Status        string    `gorm:"column:status;not null"`
	Message       string    `gorm:"column:message;type:text"`
	Waypoints     int       `gorm:"column:waypoints;not null;default:0"`
	VehiclesUsed  int       `gorm:"column:vehicles_used;not null;default:0"`
	TotalDistance float64   `gorm:"column:total_distance;not null;default:0"`
	TotalDuration *int64    `gorm:"column:total_duration"`
	SolveMillis   int64     `gorm:"column:solve_millis;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;index;not null"`
}

func (SolveRunModel) TableName() string {
	return "solve_runs"
}
