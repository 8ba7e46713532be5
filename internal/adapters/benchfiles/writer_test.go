package benchfiles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/benchfiles"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

func TestVRPLIBWriter_RoundTrip(t *testing.T) {
	// Arrange
	parser := benchfiles.NewVRPLIBParser()
	writer := benchfiles.NewVRPLIBWriter()
	original, err := parser.Parse("toy5.vrp", []byte(toyVRP))
	require.NoError(t, err)

	// Act - write and re-parse
	data, err := writer.Write(original)
	require.NoError(t, err)
	reparsed, err := parser.Parse("toy5.vrp", data)

	// Assert - the instances agree on everything the file can carry
	require.NoError(t, err)
	assert.Equal(t, original.Name, reparsed.Name)
	assert.Equal(t, original.Capacity, reparsed.Capacity)
	assert.Equal(t, original.NumVehicles, reparsed.NumVehicles)
	assert.Equal(t, original.DepotIndex, reparsed.DepotIndex)
	require.Equal(t, len(original.Waypoints), len(reparsed.Waypoints))
	for i := range original.Waypoints {
		ox, oy := original.Waypoints[i].Planar()
		rx, ry := reparsed.Waypoints[i].Planar()
		assert.Equal(t, ox, rx)
		assert.Equal(t, oy, ry)
		assert.Equal(t, original.Waypoints[i].PrimaryDemand(), reparsed.Waypoints[i].PrimaryDemand())
	}
}

func TestSaveFile_RefusesOverwrite(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "out.vrp")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	// Act
	err := benchfiles.SaveFile(path, []byte("new"), false)

	// Assert
	require.Error(t, err)
	var conflict *shared.ConflictError
	require.ErrorAs(t, err, &conflict)

	// Act - overwrite flag wins
	require.NoError(t, benchfiles.SaveFile(path, []byte("new"), true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
