package benchfiles_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/benchfiles"
	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// newDataRoot lays out two datasets plus an excluded uploads directory.
func newDataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("solomon/c101.vrp", toyVRP)
	write("solomon/c101.sol", "Route #1: 1\nCost 10\n")
	write("solomon/r101.vrp", toyVRP)
	write("cvrp/nested/a.xml", "<instance><nodes/></instance>")
	write("uploads/tmp.vrp", "scratch")
	write("solomon/readme.md", "not indexed")
	return root
}

func TestIndexer_DatasetsSortedAndFiltered(t *testing.T) {
	// Arrange
	indexer := benchfiles.NewIndexer(newDataRoot(t), []string{"uploads"}, nil, nil)

	// Act
	datasets, err := indexer.Datasets(context.Background())

	// Assert - excluded dir dropped, counts only benchmark extensions
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "cvrp", datasets[0].Name)
	assert.Equal(t, 1, datasets[0].Files)
	assert.Equal(t, "solomon", datasets[1].Name)
	assert.Equal(t, 3, datasets[1].Files)
}

func TestIndexer_FilesFiltersSortsAndPaginates(t *testing.T) {
	// Arrange
	indexer := benchfiles.NewIndexer(newDataRoot(t), []string{"uploads"}, nil, nil)
	ctx := context.Background()

	// Act - kind filter
	solutions, err := indexer.Files(ctx, benchmark.FileQuery{Dataset: "solomon", Kind: benchmark.KindSolution})
	require.NoError(t, err)

	// Assert
	require.Len(t, solutions.Items, 1)
	assert.Equal(t, "c101.sol", solutions.Items[0].Name)
	assert.Equal(t, benchmark.KindSolution, solutions.Items[0].Kind)

	// Act - substring query hits name and relative path
	byQuery, err := indexer.Files(ctx, benchmark.FileQuery{Dataset: "cvrp", Query: "nested"})
	require.NoError(t, err)

	// Assert
	require.Len(t, byQuery.Items, 1)
	assert.Equal(t, "cvrp/nested/a.xml", byQuery.Items[0].Path)

	// Act - pagination with name desc ordering
	page, err := indexer.Files(ctx, benchmark.FileQuery{
		Dataset: "solomon",
		SortBy:  "name",
		SortDir: "desc",
		Limit:   2,
		Offset:  1,
	})
	require.NoError(t, err)

	// Assert - r101.vrp, then (skipped) and the two c101 files follow
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c101.vrp", page.Items[0].Name)
	assert.Equal(t, "c101.sol", page.Items[1].Name)
}

func TestIndexer_FilesUnknownDataset(t *testing.T) {
	// Arrange
	indexer := benchfiles.NewIndexer(newDataRoot(t), nil, nil, nil)

	// Act
	_, err := indexer.Files(context.Background(), benchmark.FileQuery{Dataset: "nope"})

	// Assert
	require.Error(t, err)
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestIndexer_FindPairIsStemInsensitive(t *testing.T) {
	// Arrange
	indexer := benchfiles.NewIndexer(newDataRoot(t), nil, nil, nil)
	ctx := context.Background()

	// Act - bare stem and full filename must resolve identically
	byStem, err := indexer.FindPair(ctx, "solomon", "c101")
	require.NoError(t, err)
	byFile, err := indexer.FindPair(ctx, "solomon", "C101.vrp")
	require.NoError(t, err)

	// Assert
	require.NotNil(t, byStem.Instance)
	require.NotNil(t, byStem.Solution)
	assert.Equal(t, "c101.vrp", byStem.Instance.Name)
	assert.Equal(t, "c101.sol", byStem.Solution.Name)
	assert.Equal(t, byStem.Instance.Path, byFile.Instance.Path)
	assert.Equal(t, byStem.Solution.Path, byFile.Solution.Path)

	// Act - instance without a shipped solution
	solo, err := indexer.FindPair(ctx, "solomon", "r101")
	require.NoError(t, err)

	// Assert
	require.NotNil(t, solo.Instance)
	assert.Nil(t, solo.Solution)
}

func TestIndexer_ScansAreCachedUntilTTL(t *testing.T) {
	// Arrange - indexer with a mock-clock cache
	root := newDataRoot(t)
	clock := shared.NewMockClock(time.Now())
	indexCache := cache.New(300*time.Second, 64, clock)
	indexer := benchfiles.NewIndexer(root, nil, indexCache, cache.New(120*time.Second, 64, clock))
	ctx := context.Background()

	first, err := indexer.Files(ctx, benchmark.FileQuery{Dataset: "solomon"})
	require.NoError(t, err)
	require.Equal(t, 3, first.Total)

	// Act - a new file lands on disk; within the TTL the walk is not repeated
	require.NoError(t, os.WriteFile(filepath.Join(root, "solomon", "r102.vrp"), []byte(toyVRP), 0o644))
	cached, err := indexer.Files(ctx, benchmark.FileQuery{Dataset: "solomon"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 3, cached.Total)

	// Act - after expiry the new file is picked up
	clock.Advance(301 * time.Second)
	refreshed, err := indexer.Files(ctx, benchmark.FileQuery{Dataset: "solomon"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 4, refreshed.Total)
}

func TestIndexer_ResolveRejectsTraversal(t *testing.T) {
	// Arrange
	root := newDataRoot(t)
	indexer := benchfiles.NewIndexer(root, nil, nil, nil)

	// Act
	abs, err := indexer.Resolve("solomon/c101.vrp")
	require.NoError(t, err)
	_, escapeErr := indexer.Resolve("../etc/passwd")

	// Assert
	assert.Equal(t, filepath.Join(root, "solomon", "c101.vrp"), abs)
	require.Error(t, escapeErr)
	var inputErr *shared.InputError
	assert.ErrorAs(t, escapeErr, &inputErr)
}
