package benchfiles

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

var (
	vrplibHeader    = regexp.MustCompile(`^\s*([A-Z][A-Z_0-9 ]*?)\s*:\s*(.+?)\s*$`)
	trucksInComment = regexp.MustCompile(`(?i)(?:min\.?\s*)?no\.?\s*of\s*trucks\s*:\s*(\d+)`)
)

var vrplibSections = map[string]bool{
	"NODE_COORD_SECTION":   true,
	"DEMAND_SECTION":       true,
	"DEPOT_SECTION":        true,
	"SERVICE_TIME_SECTION": true,
	"TIME_WINDOW_SECTION":  true,
	"EDGE_WEIGHT_SECTION":  true,
}

// VRPLIBParser reads TSPLIB-style .vrp files: `KEY : value` headers followed
// by keyed sections, terminated by EOF. Node ids in the file are 1-based; the
// emitted instance uses 0-based indexes in file order.
type VRPLIBParser struct{}

func NewVRPLIBParser() *VRPLIBParser {
	return &VRPLIBParser{}
}

func (p *VRPLIBParser) Format() string {
	return FormatVRPLIB
}

func (p *VRPLIBParser) Sniff(name string, head []byte) bool {
	text := strings.ToUpper(string(head))
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		return false
	}
	if strings.Contains(text, "NODE_COORD_SECTION") || strings.Contains(text, "EDGE_WEIGHT_SECTION") {
		return true
	}
	return strings.Contains(text, "DIMENSION") && strings.Contains(text, ":")
}

type vrplibNode struct {
	x, y     float64
	hasCoord bool
	demand   int64
	service  int64
	window   *solver.TimeWindow
}

func (p *VRPLIBParser) Parse(name string, data []byte) (*benchmark.Instance, error) {
	headers := make(map[string]string)
	nodes := make(map[int]*vrplibNode)
	var depotIDs []int
	var weights []float64
	vehicles := 0
	var blockCapacity int64
	inVehicleBlock := false
	depotDone := false

	nodeAt := func(id int) *vrplibNode {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := &vrplibNode{}
		nodes[id] = n
		return n
	}

	section := ""
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		upper := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(line, ":")))
		if upper == "EOF" {
			break
		}
		if vrplibSections[upper] {
			section = upper
			inVehicleBlock = false
			continue
		}

		if section == "" {
			// Some hybrid files carry a Solomon-style VEHICLE block instead
			// of CAPACITY/VEHICLES headers.
			if upper == "VEHICLE" || upper == "VEHICLES" {
				inVehicleBlock = true
				continue
			}
			if inVehicleBlock {
				if strings.HasPrefix(upper, "NUMBER") {
					continue
				}
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					n, errN := strconv.Atoi(fields[0])
					c, errC := strconv.ParseInt(fields[1], 10, 64)
					if errN == nil && errC == nil {
						vehicles, blockCapacity = n, c
						inVehicleBlock = false
					}
				}
				continue
			}
			if m := vrplibHeader.FindStringSubmatch(line); m != nil {
				headers[strings.TrimSpace(m[1])] = m[2]
			}
			continue
		}

		fields := strings.Fields(line)
		switch section {
		case "NODE_COORD_SECTION":
			if len(fields) < 3 {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed NODE_COORD_SECTION row %q", line))
			}
			id, errID := strconv.Atoi(fields[0])
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			if errID != nil || errX != nil || errY != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed NODE_COORD_SECTION row %q", line))
			}
			n := nodeAt(id)
			n.x, n.y, n.hasCoord = x, y, true

		case "DEMAND_SECTION":
			if len(fields) < 2 {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed DEMAND_SECTION row %q", line))
			}
			id, errID := strconv.Atoi(fields[0])
			demand, errD := parseIntField(fields[1])
			if errID != nil || errD != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed DEMAND_SECTION row %q", line))
			}
			nodeAt(id).demand = demand

		case "SERVICE_TIME_SECTION":
			if len(fields) < 2 {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed SERVICE_TIME_SECTION row %q", line))
			}
			id, errID := strconv.Atoi(fields[0])
			service, errS := parseIntField(fields[1])
			if errID != nil || errS != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed SERVICE_TIME_SECTION row %q", line))
			}
			nodeAt(id).service = service

		case "TIME_WINDOW_SECTION":
			if len(fields) < 3 {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed TIME_WINDOW_SECTION row %q", line))
			}
			id, errID := strconv.Atoi(fields[0])
			start, errS := parseIntField(fields[1])
			end, errE := parseIntField(fields[2])
			if errID != nil || errS != nil || errE != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed TIME_WINDOW_SECTION row %q", line))
			}
			if end < start {
				start, end = end, start
			}
			nodeAt(id).window = &solver.TimeWindow{Start: start, End: end}

		case "DEPOT_SECTION":
			if depotDone {
				continue
			}
			for _, field := range fields {
				v, err := strconv.Atoi(field)
				if err != nil {
					return nil, shared.NewInputError(name, fmt.Sprintf("malformed DEPOT_SECTION row %q", line))
				}
				if v == -1 {
					depotDone = true
					break
				}
				depotIDs = append(depotIDs, v)
			}

		case "EDGE_WEIGHT_SECTION":
			for _, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, shared.NewInputError(name, fmt.Sprintf("malformed EDGE_WEIGHT_SECTION value %q", field))
				}
				weights = append(weights, v)
			}
		}
	}

	dimension := 0
	if v, ok := headers["DIMENSION"]; ok {
		dimension, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	if len(nodes) == 0 && dimension > 0 {
		// Pure EDGE_WEIGHT instances may omit coordinates entirely.
		for id := 1; id <= dimension; id++ {
			nodeAt(id)
		}
	}
	if len(nodes) == 0 {
		return nil, shared.NewInputError(name, "file carries no nodes")
	}

	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	idToIndex := make(map[int]int, len(ids))
	waypoints := make([]solver.Waypoint, len(ids))
	for i, id := range ids {
		idToIndex[id] = i
		node := nodes[id]
		wp := solver.Waypoint{
			ID:          strconv.Itoa(id),
			ServiceTime: node.service,
			TimeWindow:  node.window,
			Priority:    1,
		}
		if node.hasCoord {
			x, y := node.x, node.y
			wp.X, wp.Y = &x, &y
			// Legacy loaders aliased (x, y) to (lat, lon); keep the mirror so
			// display layers have something to show.
			wp.Location = &shared.Coordinate{Lat: x, Lon: y}
		}
		if node.demand != 0 {
			wp.Demand = []int64{node.demand}
		}
		waypoints[i] = wp
	}

	depotIndex := 0
	if len(depotIDs) > 0 {
		if idx, ok := idToIndex[depotIDs[0]]; ok {
			depotIndex = idx
		}
	}
	waypoints[depotIndex].Depot = true
	widenDepotWindow(waypoints, depotIndex)

	capacity := blockCapacity
	if v, ok := headers["CAPACITY"]; ok {
		if c, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			capacity = c
		}
	}
	if v, ok := headers["VEHICLES"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			vehicles = n
		}
	}
	if vehicles <= 0 {
		if m := trucksInComment.FindStringSubmatch(headers["COMMENT"]); m != nil {
			vehicles, _ = strconv.Atoi(m[1])
		}
	}
	if vehicles <= 0 {
		vehicles = inferVehicleCount(waypoints, capacity)
	}

	var adopted *matrix.Matrix
	if len(weights) > 0 {
		n := len(waypoints)
		if len(weights) != n*n {
			return nil, shared.NewInputError(name,
				fmt.Sprintf("EDGE_WEIGHT_SECTION carries %d values, want %d for a %dx%d matrix", len(weights), n*n, n, n))
		}
		adopted = &matrix.Matrix{Distances: make([][]float64, n)}
		for i := 0; i < n; i++ {
			adopted.Distances[i] = append([]float64(nil), weights[i*n:(i+1)*n]...)
		}
	}

	instName := headers["NAME"]
	if instName == "" {
		instName = stem(name)
	}

	return &benchmark.Instance{
		Name:           instName,
		Format:         FormatVRPLIB,
		Comment:        headers["COMMENT"],
		EdgeWeightType: headers["EDGE_WEIGHT_TYPE"],
		Waypoints:      waypoints,
		DepotIndex:     depotIndex,
		NumVehicles:    vehicles,
		Capacity:       capacity,
		Matrix:         adopted,
	}, nil
}

// parseIntField reads an integer, tolerating the float spellings some files
// use ("10.0").
func parseIntField(field string) (int64, error) {
	if v, err := strconv.ParseInt(field, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
