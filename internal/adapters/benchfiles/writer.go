package benchfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// VRPLIBWriter serializes an instance back to the TSPLIB-style .vrp layout.
// Sections are emitted only when the instance carries the data, so a plain
// CVRP round-trips without growing time-window noise.
type VRPLIBWriter struct{}

func NewVRPLIBWriter() *VRPLIBWriter {
	return &VRPLIBWriter{}
}

func (w *VRPLIBWriter) Format() string {
	return FormatVRPLIB
}

func (w *VRPLIBWriter) Write(inst *benchmark.Instance) ([]byte, error) {
	if inst == nil || len(inst.Waypoints) == 0 {
		return nil, shared.NewInputError("instance", "instance carries no waypoints")
	}

	var b strings.Builder
	writeHeader := func(key, value string) {
		fmt.Fprintf(&b, "%s : %s\n", key, value)
	}

	writeHeader("NAME", inst.Name)
	if inst.Comment != "" {
		writeHeader("COMMENT", inst.Comment)
	}
	writeHeader("TYPE", "CVRP")
	writeHeader("DIMENSION", strconv.Itoa(len(inst.Waypoints)))
	ewt := inst.EdgeWeightType
	if ewt == "" {
		ewt = "EUC_2D"
	}
	writeHeader("EDGE_WEIGHT_TYPE", ewt)
	if inst.Capacity > 0 {
		writeHeader("CAPACITY", strconv.FormatInt(inst.Capacity, 10))
	}
	if inst.NumVehicles > 0 {
		writeHeader("VEHICLES", strconv.Itoa(inst.NumVehicles))
	}

	hasCoords := false
	hasService := false
	hasWindows := false
	for i := range inst.Waypoints {
		wp := &inst.Waypoints[i]
		if wp.HasPlanar() || wp.Location != nil {
			hasCoords = true
		}
		if wp.ServiceTime > 0 {
			hasService = true
		}
		if wp.TimeWindow != nil {
			hasWindows = true
		}
	}

	if hasCoords {
		b.WriteString("NODE_COORD_SECTION\n")
		for i := range inst.Waypoints {
			x, y := inst.Waypoints[i].Planar()
			fmt.Fprintf(&b, "%d %s %s\n", i+1, formatCoord(x), formatCoord(y))
		}
	}

	b.WriteString("DEMAND_SECTION\n")
	for i := range inst.Waypoints {
		fmt.Fprintf(&b, "%d %d\n", i+1, inst.Waypoints[i].PrimaryDemand())
	}

	if hasService {
		b.WriteString("SERVICE_TIME_SECTION\n")
		for i := range inst.Waypoints {
			fmt.Fprintf(&b, "%d %d\n", i+1, inst.Waypoints[i].ServiceTime)
		}
	}
	if hasWindows {
		b.WriteString("TIME_WINDOW_SECTION\n")
		for i := range inst.Waypoints {
			start, end := int64(0), solver.HorizonSeconds
			if tw := inst.Waypoints[i].TimeWindow; tw != nil {
				start, end = tw.Start, tw.End
			}
			fmt.Fprintf(&b, "%d %d %d\n", i+1, start, end)
		}
	}

	b.WriteString("DEPOT_SECTION\n")
	fmt.Fprintf(&b, " %d\n", inst.DepotIndex+1)
	b.WriteString(" -1\n")
	b.WriteString("EOF\n")
	return []byte(b.String()), nil
}

// formatCoord keeps integral coordinates integral so round-trips are
// byte-stable on classic instances.
func formatCoord(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveFile writes data to path, refusing to overwrite an existing file unless
// overwrite is set.
func SaveFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return shared.NewConflictError(path, fmt.Sprintf("file %q already exists; pass overwrite to replace it", path))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write instance file: %w", err)
	}
	return nil
}

// Exporter persists canonical instances under the data root as .vrp files.
type Exporter struct {
	root   string
	writer benchmark.Writer
}

// NewExporter creates an exporter rooted at the benchmark data directory.
func NewExporter(root string) *Exporter {
	return &Exporter{root: root, writer: NewVRPLIBWriter()}
}

// Export implements benchmark.Exporter. relPath stays inside the data root;
// a missing extension defaults to the writer's format.
func (e *Exporter) Export(inst *benchmark.Instance, relPath string, overwrite bool) (string, int, error) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return "", 0, shared.NewInputError("path", "path is required")
	}
	if filepath.Ext(relPath) == "" {
		relPath += ".vrp"
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", 0, shared.NewInputError("path", "path escapes the data root")
	}

	data, err := e.writer.Write(inst)
	if err != nil {
		return "", 0, err
	}

	abs := filepath.Join(e.root, clean)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := SaveFile(abs, data, overwrite); err != nil {
		return "", 0, err
	}
	return abs, len(data), nil
}
