package benchmark

import "context"

// Parser decodes one benchmark file format.
type Parser interface {
	// Format names the wire format: vrplib, solomon or xml.
	Format() string

	// Sniff reports whether the file head looks like this format. The
	// factory consults parsers in registration order when the extension
	// alone is ambiguous.
	Sniff(name string, head []byte) bool

	// Parse decodes the full file.
	Parse(name string, data []byte) (*Instance, error)
}

// SolutionParser decodes reference solution files.
type SolutionParser interface {
	ParseSolution(name string, data []byte) (*Solution, error)
}

// Loader parses any supported benchmark file, picking the format from the
// file name and content.
type Loader interface {
	Parse(name string, data []byte) (*Instance, error)
}

// Writer serializes an instance back to a file format.
type Writer interface {
	Format() string
	Write(inst *Instance) ([]byte, error)
}

// Exporter persists a canonical instance as a benchmark file under the data
// root. It returns the absolute path written and the byte count.
type Exporter interface {
	Export(inst *Instance, relPath string, overwrite bool) (string, int, error)
}

// Index walks the benchmark data root and answers listing, search and
// pairing queries. Implementations cache; callers treat results as snapshots.
type Index interface {
	Datasets(ctx context.Context) ([]Dataset, error)
	Files(ctx context.Context, q FileQuery) (*Page, error)
	FindPair(ctx context.Context, dataset, name string) (*Pair, error)

	// Resolve maps an index-relative path to an absolute path inside the
	// data root, rejecting traversal outside it.
	Resolve(relPath string) (string, error)
}
