package benchfiles

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const (
	defaultIndexTTL  = 5 * time.Minute
	defaultPairTTL   = 2 * time.Minute
	defaultCacheSize = 256
)

// Extension sets for pairing and kind filters. The text-bearing extensions
// appear in both sets; pairing resolves the overlap by never matching a file
// against itself.
var (
	instanceExts = map[string]bool{".vrp": true, ".xml": true, ".txt": true}
	solutionExts = map[string]bool{".sol": true, ".xml": true, ".txt": true}
)

// Indexer discovers datasets (direct subdirectories of the data root) and
// answers file listing and pairing queries. Directory walks are cached so
// repeated pagination over a large dataset does not re-scan the tree.
type Indexer struct {
	root       string
	excludes   map[string]struct{}
	indexCache *cache.TTLCache
	pairCache  *cache.TTLCache
}

// NewIndexer creates an indexer over root. Nil caches fall back to private
// ones with the default TTLs.
func NewIndexer(root string, excludes []string, indexCache, pairCache *cache.TTLCache) *Indexer {
	excluded := make(map[string]struct{}, len(excludes))
	for _, name := range excludes {
		excluded[strings.ToLower(name)] = struct{}{}
	}
	if indexCache == nil {
		indexCache = cache.New(defaultIndexTTL, defaultCacheSize, nil)
	}
	if pairCache == nil {
		pairCache = cache.New(defaultPairTTL, defaultCacheSize, nil)
	}
	return &Indexer{
		root:       root,
		excludes:   excluded,
		indexCache: indexCache,
		pairCache:  pairCache,
	}
}

// Datasets implements benchmark.Index.
func (ix *Indexer) Datasets(ctx context.Context) ([]benchmark.Dataset, error) {
	entries, err := os.ReadDir(ix.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data root %q: %w", ix.root, err)
	}

	datasets := make([]benchmark.Dataset, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, excluded := ix.excludes[strings.ToLower(entry.Name())]; excluded {
			continue
		}
		files, err := ix.scan(ctx, entry.Name())
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, benchmark.Dataset{Name: entry.Name(), Files: len(files)})
	}
	sort.Slice(datasets, func(i, j int) bool {
		return strings.ToLower(datasets[i].Name) < strings.ToLower(datasets[j].Name)
	})
	return datasets, nil
}

// Files implements benchmark.Index.
func (ix *Indexer) Files(ctx context.Context, q benchmark.FileQuery) (*benchmark.Page, error) {
	entries, err := ix.scan(ctx, q.Dataset)
	if err != nil {
		return nil, err
	}

	extFilter := make(map[string]bool, len(q.Exts))
	for _, ext := range q.Exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extFilter[ext] = true
	}
	query := strings.ToLower(strings.TrimSpace(q.Query))

	filtered := make([]benchmark.FileEntry, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name))
		if len(extFilter) > 0 && !extFilter[ext] {
			continue
		}
		switch q.Kind {
		case benchmark.KindInstance:
			if !instanceExts[ext] {
				continue
			}
		case benchmark.KindSolution:
			if !solutionExts[ext] {
				continue
			}
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Name), query) &&
			!strings.Contains(strings.ToLower(e.Path), query) {
			continue
		}
		filtered = append(filtered, e)
	}

	sortFiles(filtered, q.SortBy, q.SortDir)

	total := len(filtered)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit := q.Limit
	if limit <= 0 || offset+limit > total {
		limit = total - offset
	}

	return &benchmark.Page{
		Items:  filtered[offset : offset+limit],
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}, nil
}

// FindPair implements benchmark.Index. Matching is case-insensitive on the
// file stem, so "c101" and "C101.vrp" name the same pair.
func (ix *Indexer) FindPair(ctx context.Context, dataset, name string) (*benchmark.Pair, error) {
	want := strings.ToLower(stem(name))
	key := dataset + "|" + want

	value, err := ix.pairCache.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		entries, err := ix.scan(ctx, dataset)
		if err != nil {
			return nil, err
		}
		var instance, solution *benchmark.FileEntry
		for i := range entries {
			e := &entries[i]
			if strings.ToLower(e.Stem()) != want {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name))
			if instance == nil && instanceExts[ext] {
				instance = e
				continue
			}
			if solution == nil && solutionExts[ext] {
				solution = e
			}
		}
		if instance == nil {
			return nil, shared.NewNotFoundError("instance", name)
		}
		return &benchmark.Pair{Instance: instance, Solution: solution}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*benchmark.Pair), nil
}

// Resolve implements benchmark.Index.
func (ix *Indexer) Resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", shared.NewInputError("path", "path escapes the data root")
	}
	return filepath.Join(ix.root, clean), nil
}

// scan returns every benchmark file under the dataset directory, walked once
// per index-cache TTL.
func (ix *Indexer) scan(ctx context.Context, dataset string) ([]benchmark.FileEntry, error) {
	if dataset == "" {
		return nil, shared.NewInputError("dataset", "dataset is required")
	}
	if filepath.Base(dataset) != dataset {
		return nil, shared.NewInputError("dataset", "dataset must be a plain directory name")
	}
	if _, excluded := ix.excludes[strings.ToLower(dataset)]; excluded {
		return nil, shared.NewNotFoundError("dataset", dataset)
	}

	value, err := ix.indexCache.GetOrCompute(ctx, "files:"+dataset, func(ctx context.Context) (interface{}, error) {
		dir := filepath.Join(ix.root, dataset)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, shared.NewNotFoundError("dataset", dataset)
		}

		var files []benchmark.FileEntry
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if !instanceExts[ext] && !solutionExts[ext] {
				return nil
			}
			fileInfo, err := d.Info()
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(ix.root, path)
			if err != nil {
				return err
			}
			kind := benchmark.KindInstance
			if ext == ".sol" {
				kind = benchmark.KindSolution
			}
			files = append(files, benchmark.FileEntry{
				Name:      d.Name(),
				Path:      filepath.ToSlash(rel),
				Dataset:   dataset,
				SizeBytes: fileInfo.Size(),
				Kind:      kind,
			})
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("failed to walk dataset %q: %w", dataset, walkErr)
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		return files, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]benchmark.FileEntry), nil
}

func sortFiles(files []benchmark.FileEntry, by, dir string) {
	desc := strings.EqualFold(dir, "desc")
	var less func(i, j int) bool
	switch strings.ToLower(by) {
	case "size":
		less = func(i, j int) bool {
			if files[i].SizeBytes != files[j].SizeBytes {
				return files[i].SizeBytes < files[j].SizeBytes
			}
			return files[i].Name < files[j].Name
		}
	default:
		less = func(i, j int) bool {
			ni, nj := strings.ToLower(files[i].Name), strings.ToLower(files[j].Name)
			if ni != nj {
				return ni < nj
			}
			return files[i].Path < files[j].Path
		}
	}
	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(files, less)
}
