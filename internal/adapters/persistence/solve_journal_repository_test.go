package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/persistence"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/test/helpers"
)

func TestSolveJournalRepository_SaveAndRecent(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	repo := persistence.NewGormSolveJournalRepository(db, clock)

	duration := int64(95)
	first := &journal.SolveRun{
		RequestID:     "run-1",
		Engine:        "tour",
		Status:        "success",
		Waypoints:     5,
		VehiclesUsed:  1,
		TotalDistance: 42.5,
		TotalDuration: &duration,
		SolveMillis:   12,
	}

	// Act - Save two runs a minute apart
	err := repo.Save(context.Background(), first)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	err = repo.Save(context.Background(), &journal.SolveRun{
		RequestID:     "run-2",
		Engine:        "heuristic",
		Status:        "success",
		Waypoints:     8,
		VehiclesUsed:  2,
		TotalDistance: 99.0,
		SolveMillis:   40,
	})
	require.NoError(t, err)

	// Act - Recent
	runs, err := repo.Recent(context.Background(), 10)

	// Assert - newest first, fields surviving the round trip
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RequestID)
	assert.Equal(t, "run-1", runs[1].RequestID)
	assert.Equal(t, "tour", runs[1].Engine)
	assert.Equal(t, 42.5, runs[1].TotalDistance)
	require.NotNil(t, runs[1].TotalDuration)
	assert.Equal(t, int64(95), *runs[1].TotalDuration)
	assert.Nil(t, runs[0].TotalDuration)
	assert.Equal(t, clock.Now().UTC(), runs[0].CreatedAt.UTC())
}

func TestSolveJournalRepository_RecentHonorsLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	repo := persistence.NewGormSolveJournalRepository(db, clock)

	for i := 0; i < 5; i++ {
		err := repo.Save(context.Background(), &journal.SolveRun{
			RequestID: string(rune('a' + i)),
			Engine:    "tour",
			Status:    "success",
		})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	// Act
	runs, err := repo.Recent(context.Background(), 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "e", runs[0].RequestID)
	assert.Equal(t, "d", runs[1].RequestID)
}

func TestSolveJournalRepository_CountByEngine(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSolveJournalRepository(db, nil)

	for i, engine := range []string{"tour", "tour", "mip"} {
		err := repo.Save(context.Background(), &journal.SolveRun{
			RequestID: string(rune('x' + i)),
			Engine:    engine,
			Status:    "success",
		})
		require.NoError(t, err)
	}

	// Act
	counts, err := repo.CountByEngine(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["tour"])
	assert.Equal(t, int64(1), counts["mip"])
}

func TestSolveJournalRepository_RejectsDuplicateRequestID(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSolveJournalRepository(db, nil)

	run := &journal.SolveRun{RequestID: "run-1", Engine: "tour", Status: "success"}
	require.NoError(t, repo.Save(context.Background(), run))

	// Act
	err := repo.Save(context.Background(), &journal.SolveRun{RequestID: "run-1", Engine: "mip", Status: "error"})

	// Assert
	assert.Error(t, err)
}
