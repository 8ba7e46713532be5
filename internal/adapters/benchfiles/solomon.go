package benchfiles

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// SolomonParser reads Solomon-style .txt instances: an instance name, a
// VEHICLE block with NUMBER and CAPACITY, and a CUSTOMER table of
// id/x/y/demand/ready/due/service rows. File times are minutes; the parsed
// instance carries seconds.
type SolomonParser struct{}

func NewSolomonParser() *SolomonParser {
	return &SolomonParser{}
}

func (p *SolomonParser) Format() string {
	return FormatSolomon
}

func (p *SolomonParser) Sniff(name string, head []byte) bool {
	text := strings.ToUpper(string(head))
	return strings.Contains(text, "VEHICLE") && strings.Contains(text, "CUST")
}

type solomonRow struct {
	id      int
	x, y    float64
	demand  int64
	ready   int64
	due     int64
	service int64
}

func (p *SolomonParser) Parse(name string, data []byte) (*benchmark.Instance, error) {
	lines := strings.Split(string(data), "\n")

	instName := ""
	vehicles := 0
	var capacity int64
	var rows []solomonRow

	const (
		scanName = iota
		scanVehicle
		scanCustomers
	)
	state := scanName

	for _, raw := range lines {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch state {
		case scanName:
			if upper == "VEHICLE" {
				state = scanVehicle
				continue
			}
			if instName == "" {
				instName = line
			}

		case scanVehicle:
			if strings.Contains(upper, "NUMBER") && strings.Contains(upper, "CAPACITY") {
				continue
			}
			if strings.Contains(upper, "CUST") && strings.Contains(upper, "NO") {
				state = scanCustomers
				continue
			}
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				n, errN := strconv.Atoi(fields[0])
				c, errC := parseIntField(fields[1])
				if errN == nil && errC == nil {
					vehicles, capacity = n, c
				}
			}

		case scanCustomers:
			if strings.Contains(upper, "CUST") && strings.Contains(upper, "NO") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 7 {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed customer row %q: want 7 columns", line))
			}
			row, err := parseSolomonRow(fields)
			if err != nil {
				return nil, shared.NewInputError(name, fmt.Sprintf("malformed customer row %q", line))
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, shared.NewInputError(name, "file carries no customer rows")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	// Depot is the row with id 0, else the smallest id (first after sorting).
	depotIndex := 0
	waypoints := make([]solver.Waypoint, len(rows))
	for i, row := range rows {
		ready, due := row.ready, row.due
		if due < ready {
			ready, due = due, ready
		}
		x, y := row.x, row.y
		wp := solver.Waypoint{
			ID:          strconv.Itoa(row.id),
			X:           &x,
			Y:           &y,
			Location:    &shared.Coordinate{Lat: x, Lon: y},
			ServiceTime: row.service * 60,
			TimeWindow:  &solver.TimeWindow{Start: ready * 60, End: due * 60},
			Priority:    1,
		}
		if row.demand != 0 {
			wp.Demand = []int64{row.demand}
		}
		waypoints[i] = wp
	}
	waypoints[depotIndex].Depot = true
	widenDepotWindow(waypoints, depotIndex)

	if vehicles <= 0 {
		vehicles = inferVehicleCount(waypoints, capacity)
	}
	if instName == "" {
		instName = stem(name)
	}

	inst := &benchmark.Instance{
		Name:           instName,
		Format:         FormatSolomon,
		EdgeWeightType: "EUC_2D",
		Waypoints:      waypoints,
		DepotIndex:     depotIndex,
		NumVehicles:    vehicles,
		Capacity:       capacity,
	}
	// Solomon travel time equals Euclidean distance in minutes, so the matrix
	// is fixed by the coordinates: distances as-is, durations scaled to
	// seconds to match the converted windows.
	inst.Matrix = inst.EuclideanMatrix(60)
	return inst, nil
}

func parseSolomonRow(fields []string) (solomonRow, error) {
	var row solomonRow
	var err error
	if row.id, err = strconv.Atoi(fields[0]); err != nil {
		return row, err
	}
	if row.x, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return row, err
	}
	if row.y, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return row, err
	}
	if row.demand, err = parseIntField(fields[3]); err != nil {
		return row, err
	}
	if row.ready, err = parseIntField(fields[4]); err != nil {
		return row, err
	}
	if row.due, err = parseIntField(fields[5]); err != nil {
		return row, err
	}
	if row.service, err = parseIntField(fields[6]); err != nil {
		return row, err
	}
	return row, nil
}
