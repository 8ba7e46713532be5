package benchmarkapp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/benchfiles"
	"github.com/andrescamacho/routing-go/internal/application/benchmarkapp"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

const tinyVRP = `NAME : tiny
TYPE : CVRP
DIMENSION : 3
EDGE_WEIGHT_TYPE : EUC_2D
CAPACITY : 10
NODE_COORD_SECTION
 1 0 0
 2 3 4
 3 6 8
DEMAND_SECTION
 1 0
 2 4
 3 4
DEPOT_SECTION
 1
 -1
EOF
`

const tinySol = `Route #1: 1 2
Cost 20
`

// newDataRoot lays out root/cvrp/{tiny.vrp,tiny.sol}.
func newDataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "cvrp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.vrp"), []byte(tinyVRP), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.sol"), []byte(tinySol), 0o644))
	return root
}

func TestListDatasetsHandler_ListsDataRoot(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	handler := benchmarkapp.NewListDatasetsHandler(benchfiles.NewIndexer(root, nil, nil, nil))

	// Act
	resp, err := handler.Handle(context.Background(), &benchmarkapp.ListDatasetsQuery{})

	// Assert
	require.NoError(t, err)
	datasets := resp.(*benchmarkapp.ListDatasetsResponse).Datasets
	require.Len(t, datasets, 1)
	assert.Equal(t, "cvrp", datasets[0].Name)
	assert.Equal(t, 2, datasets[0].Files)
}

func TestListFilesHandler_EnrichesWithSolutionPath(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	handler := benchmarkapp.NewListFilesHandler(benchfiles.NewIndexer(root, nil, nil, nil))

	// Act
	resp, err := handler.Handle(context.Background(), &benchmarkapp.ListFilesQuery{
		Dataset: "cvrp",
		Kind:    benchmark.KindInstance,
	})

	// Assert
	require.NoError(t, err)
	page := resp.(*benchmarkapp.ListFilesResponse)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "tiny.vrp", page.Items[0].Name)
	assert.Equal(t, "cvrp/tiny.sol", page.Items[0].SolutionPath)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 100, page.Limit)
}

func TestFindPairHandler_RequiresName(t *testing.T) {
	// Arrange
	handler := benchmarkapp.NewFindPairHandler(benchfiles.NewIndexer(t.TempDir(), nil, nil, nil))

	// Act
	_, err := handler.Handle(context.Background(), &benchmarkapp.FindPairQuery{Dataset: "cvrp"})

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "name", input.Field)
}

func TestLoadInstanceHandler_ParsesAndComputesMatrix(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	handler := benchmarkapp.NewLoadInstanceHandler(
		benchfiles.NewIndexer(root, nil, nil, nil), benchfiles.NewFactory())

	// Act
	resp, err := handler.Handle(context.Background(), &benchmarkapp.LoadInstanceQuery{
		Dataset:       "cvrp",
		Name:          "tiny",
		ComputeMatrix: true,
	})

	// Assert
	require.NoError(t, err)
	loaded := resp.(*benchmarkapp.LoadInstanceResponse)
	require.NotNil(t, loaded.Pair.Solution)
	inst := loaded.Instance
	require.NotNil(t, inst.Matrix)
	assert.InDelta(t, 5.0, inst.Matrix.Distances[0][1], 1e-9)
	assert.Equal(t, 0, inst.DepotIndex)
	assert.Equal(t, int64(10), inst.Capacity)
}

func TestLoadInstanceHandler_SkipsMatrixWhenNotRequested(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	handler := benchmarkapp.NewLoadInstanceHandler(
		benchfiles.NewIndexer(root, nil, nil, nil), benchfiles.NewFactory())

	// Act
	resp, err := handler.Handle(context.Background(), &benchmarkapp.LoadInstanceQuery{
		Dataset: "cvrp",
		Name:    "tiny.vrp",
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, resp.(*benchmarkapp.LoadInstanceResponse).Instance.Matrix)
}

func TestLoadInstanceHandler_ReportsMissingInstance(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	handler := benchmarkapp.NewLoadInstanceHandler(
		benchfiles.NewIndexer(root, nil, nil, nil), benchfiles.NewFactory())

	// Act
	_, err := handler.Handle(context.Background(), &benchmarkapp.LoadInstanceQuery{
		Dataset: "cvrp",
		Name:    "ghost",
	})

	// Assert
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExportInstanceHandler_WritesAndRefusesOverwrite(t *testing.T) {
	// Arrange
	root := t.TempDir()
	handler := benchmarkapp.NewExportInstanceHandler(benchfiles.NewExporter(root))
	x0, y0, x1, y1 := 0.0, 0.0, 3.0, 4.0
	inst := &benchmark.Instance{
		Name:        "out",
		NumVehicles: 1,
		Capacity:    10,
		Waypoints: []solver.Waypoint{
			{ID: "1", X: &x0, Y: &y0, Depot: true},
			{ID: "2", X: &x1, Y: &y1, Demand: []int64{4}},
		},
	}

	// Act
	resp, err := handler.Handle(context.Background(), &benchmarkapp.ExportInstanceQuery{
		Path:     "exports/out",
		Instance: inst,
	})

	// Assert
	require.NoError(t, err)
	exported := resp.(*benchmarkapp.ExportInstanceResponse)
	assert.Equal(t, filepath.Join(root, "exports", "out.vrp"), exported.Path)
	assert.Positive(t, exported.Size)

	// A second export without the overwrite flag conflicts.
	_, err = handler.Handle(context.Background(), &benchmarkapp.ExportInstanceQuery{
		Path:     "exports/out.vrp",
		Instance: inst,
	})
	var conflict *shared.ConflictError
	require.ErrorAs(t, err, &conflict)

	// With overwrite it succeeds.
	_, err = handler.Handle(context.Background(), &benchmarkapp.ExportInstanceQuery{
		Path:      "exports/out.vrp",
		Instance:  inst,
		Overwrite: true,
	})
	require.NoError(t, err)
}
