package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// GormSolveJournalRepository implements journal.Repository using GORM.
type GormSolveJournalRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSolveJournalRepository creates the journal repository. A nil clock
// falls back to the real clock.
func NewGormSolveJournalRepository(db *gorm.DB, clock shared.Clock) *GormSolveJournalRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSolveJournalRepository{db: db, clock: clock}
}

// Save appends a run record. A zero CreatedAt is stamped with the repository
// clock so callers do not have to care about time.
func (r *GormSolveJournalRepository) Save(ctx context.Context, run *journal.SolveRun) error {
	model := runToModel(run)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = r.clock.Now()
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save solve run: %w", result.Error)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (r *GormSolveJournalRepository) Recent(ctx context.Context, limit int) ([]*journal.SolveRun, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []SolveRunModel
	result := query.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list solve runs: %w", result.Error)
	}

	runs := make([]*journal.SolveRun, len(models))
	for i := range models {
		runs[i] = modelToRun(&models[i])
	}
	return runs, nil
}

// CountByEngine returns the number of journaled runs per engine name.
func (r *GormSolveJournalRepository) CountByEngine(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Engine string
		Count  int64
	}
	result := r.db.WithContext(ctx).
		Model(&SolveRunModel{}).
		Select("engine, count(*) as count").
		Group("engine").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to count solve runs: %w", result.Error)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Engine] = row.Count
	}
	return counts, nil
}

func runToModel(run *journal.SolveRun) *SolveRunModel {
	return &SolveRunModel{
		RequestID:     run.RequestID,
		Engine:        run.Engine,
		Status:        run.Status,
		Message:       run.Message,
		Waypoints:     run.Waypoints,
		VehiclesUsed:  run.VehiclesUsed,
		TotalDistance: run.TotalDistance,
		TotalDuration: run.TotalDuration,
		SolveMillis:   run.SolveMillis,
		CreatedAt:     run.CreatedAt,
	}
}

func modelToRun(model *SolveRunModel) *journal.SolveRun {
	return &journal.SolveRun{
		RequestID:     model.RequestID,
		Engine:        model.Engine,
		Status:        model.Status,
		Message:       model.Message,
		Waypoints:     model.Waypoints,
		VehiclesUsed:  model.VehiclesUsed,
		TotalDistance: model.TotalDistance,
		TotalDuration: model.TotalDuration,
		SolveMillis:   model.SolveMillis,
		CreatedAt:     model.CreatedAt,
	}
}
