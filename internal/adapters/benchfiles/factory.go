// Package benchfiles reads and writes benchmark problem files: TSPLIB-style
// .vrp, Solomon .txt and tolerant XML instances, plus reference .sol
// solutions. A Factory picks the parser by extension and content sniffing and
// an Indexer discovers datasets under the data root.
package benchfiles

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// Format names reported on parsed instances.
const (
	FormatVRPLIB  = "vrplib"
	FormatSolomon = "solomon"
	FormatXML     = "xml"
)

// sniffLimit is how much of the file head Sniff implementations see.
const sniffLimit = 2048

// Factory routes a file to the parser that understands it. Extension wins
// when unambiguous; otherwise the parsers sniff the head in registration
// order.
type Factory struct {
	parsers []benchmark.Parser
	byExt   map[string]benchmark.Parser
}

// NewFactory registers the three instance parsers under their canonical
// extensions.
func NewFactory() *Factory {
	vrplib := NewVRPLIBParser()
	solomon := NewSolomonParser()
	xmlParser := NewXMLParser()
	return &Factory{
		parsers: []benchmark.Parser{xmlParser, solomon, vrplib},
		byExt: map[string]benchmark.Parser{
			".vrp": vrplib,
			".txt": solomon,
			".xml": xmlParser,
		},
	}
}

// Extensions returns the supported instance extensions, sorted.
func (f *Factory) Extensions() []string {
	exts := make([]string, 0, len(f.byExt))
	for ext := range f.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForFile picks a parser for the named file. The extension nominates a
// candidate; content sniffing overrides it when another parser recognizes the
// head (a .txt file may well be TSPLIB-formatted).
func (f *Factory) ForFile(name string, head []byte) (benchmark.Parser, error) {
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	ext := strings.ToLower(filepath.Ext(name))
	candidate := f.byExt[ext]
	if candidate != nil && candidate.Sniff(name, head) {
		return candidate, nil
	}
	for _, p := range f.parsers {
		if p.Sniff(name, head) {
			return p, nil
		}
	}
	if candidate != nil {
		return candidate, nil
	}
	return nil, shared.NewInputError("file",
		fmt.Sprintf("unsupported extension %q (supported: %s)", ext, strings.Join(f.Extensions(), ", ")))
}

// Parse decodes the file with the parser ForFile selects.
func (f *Factory) Parse(name string, data []byte) (*benchmark.Instance, error) {
	parser, err := f.ForFile(name, data)
	if err != nil {
		return nil, err
	}
	return parser.Parse(name, data)
}

// stem strips the directory and extension from a file name.
func stem(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// widenDepotWindow stretches the depot window to [min start, max end] across
// every windowed node so no vehicle is forced home before its last stop.
func widenDepotWindow(waypoints []solver.Waypoint, depot int) {
	if depot < 0 || depot >= len(waypoints) {
		return
	}
	var lo, hi int64
	seen := false
	for i := range waypoints {
		tw := waypoints[i].TimeWindow
		if tw == nil {
			continue
		}
		if !seen || tw.Start < lo {
			lo = tw.Start
		}
		if !seen || tw.End > hi {
			hi = tw.End
		}
		seen = true
	}
	if seen {
		waypoints[depot].TimeWindow = &solver.TimeWindow{Start: lo, End: hi}
	}
}

// inferVehicleCount estimates the fleet as ceil(total demand / capacity),
// clamped to [1, n].
func inferVehicleCount(waypoints []solver.Waypoint, capacity int64) int {
	if capacity <= 0 {
		return 1
	}
	var total int64
	for i := range waypoints {
		if d := waypoints[i].PrimaryDemand(); d > 0 {
			total += d
		}
	}
	count := int(math.Ceil(float64(total) / float64(capacity)))
	if count < 1 {
		count = 1
	}
	if n := len(waypoints); count > n {
		count = n
	}
	return count
}
