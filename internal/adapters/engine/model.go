package engine

import (
	"math"
	"sort"

	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// arcKey names one directed arc for one vehicle.
type arcKey struct {
	i, j, k int
}

// mipModel is the three-index arc formulation laid out as a flat variable
// vector: one binary per directed arc per vehicle, then one arrival time per
// node, then one usage indicator per vehicle.
//
// The equality rows are kept linearly independent on purpose: arrive-once and
// the depot return row follow from visit-once, flow conservation and the
// depot departure row, and redundant rows would leave the simplex with a
// singular basis.
type mipModel struct {
	inst  *solver.Instance
	n     int
	m     int
	depot int

	dur     [][]int64
	horizon int64
	bigM    float64

	arcs    []arcKey
	arcIdx  map[arcKey]int
	arrOff  int
	usedOff int
	numVars int

	objective []float64
	eqRows    [][]float64
	eqRHS     []float64
	leRows    [][]float64
	leRHS     []float64
}

func newMIPModel(inst *solver.Instance) *mipModel {
	mo := &mipModel{
		inst:   inst,
		n:      inst.N,
		m:      len(inst.Vehicles),
		depot:  inst.DepotIndex,
		dur:    travelTimes(inst),
		arcIdx: make(map[arcKey]int),
	}
	mo.horizon = mipHorizon(inst, mo.dur)

	var maxDur, maxSvc int64
	for i := range mo.dur {
		for _, d := range mo.dur[i] {
			if d > maxDur {
				maxDur = d
			}
		}
	}
	for _, s := range inst.ServiceTimes {
		if s > maxSvc {
			maxSvc = s
		}
	}
	mo.bigM = float64(mo.horizon + maxDur + maxSvc + 1)

	for k := 0; k < mo.m; k++ {
		for i := 0; i < mo.n; i++ {
			for j := 0; j < mo.n; j++ {
				if i == j {
					continue
				}
				mo.arcIdx[arcKey{i, j, k}] = len(mo.arcs)
				mo.arcs = append(mo.arcs, arcKey{i, j, k})
			}
		}
	}
	mo.arrOff = len(mo.arcs)
	mo.usedOff = mo.arrOff + mo.n
	mo.numVars = mo.usedOff + mo.m

	mo.buildObjective()
	mo.buildConstraints()
	return mo
}

// travelTimes returns the duration table, with rounded distances standing in
// when the matrix carries none.
func travelTimes(inst *solver.Instance) [][]int64 {
	hasDurations := inst.Matrix.HasDurations()
	out := make([][]int64, inst.N)
	for i := 0; i < inst.N; i++ {
		out[i] = make([]int64, inst.N)
		for j := 0; j < inst.N; j++ {
			if i == j {
				continue
			}
			if hasDurations {
				out[i][j] = inst.Matrix.DurationAt(i, j)
			} else {
				out[i][j] = int64(math.Round(inst.Matrix.DistanceAt(i, j)))
			}
		}
	}
	return out
}

// mipHorizon bounds the arrival variables. Open window ends are excluded so
// the Big-M stays numerically tame; the serial-tour term covers waiting for
// the latest bounded start plus every remaining leg.
func mipHorizon(inst *solver.Instance, dur [][]int64) int64 {
	horizon := int64(10000)
	var maxStart int64
	for _, tw := range inst.TimeWindows {
		if tw.End < solver.HorizonSeconds && tw.End > horizon {
			horizon = tw.End
		}
		if tw.Start > maxStart {
			maxStart = tw.Start
		}
	}
	var maxDur, totalSvc int64
	for i := range dur {
		for _, d := range dur[i] {
			if d > maxDur {
				maxDur = d
			}
		}
	}
	for _, s := range inst.ServiceTimes {
		totalSvc += s
	}
	if serial := maxStart + int64(inst.N)*maxDur + totalSvc; serial > horizon {
		horizon = serial
	}
	return horizon
}

func (mo *mipModel) buildObjective() {
	c := make([]float64, mo.numVars)
	for idx, arc := range mo.arcs {
		c[idx] = mo.inst.Matrix.DistanceAt(arc.i, arc.j)
	}
	if mo.inst.Options.VehicleFixedCost != nil && *mo.inst.Options.VehicleFixedCost > 0 {
		for k := 0; k < mo.m; k++ {
			c[mo.usedOff+k] = *mo.inst.Options.VehicleFixedCost
		}
	}
	mo.objective = c
}

func (mo *mipModel) row() []float64 {
	return make([]float64, mo.numVars)
}

func (mo *mipModel) addEq(row []float64, rhs float64) {
	mo.eqRows = append(mo.eqRows, row)
	mo.eqRHS = append(mo.eqRHS, rhs)
}

func (mo *mipModel) addLE(row []float64, rhs float64) {
	mo.leRows = append(mo.leRows, row)
	mo.leRHS = append(mo.leRHS, rhs)
}

func (mo *mipModel) buildConstraints() {
	// Each customer departs exactly once, across all vehicles.
	for i := 0; i < mo.n; i++ {
		if i == mo.depot {
			continue
		}
		row := mo.row()
		for j := 0; j < mo.n; j++ {
			if j == i {
				continue
			}
			for k := 0; k < mo.m; k++ {
				row[mo.arcIdx[arcKey{i, j, k}]] = 1
			}
		}
		mo.addEq(row, 1)
	}

	// Per vehicle, what enters a customer leaves it.
	for k := 0; k < mo.m; k++ {
		for i := 0; i < mo.n; i++ {
			if i == mo.depot {
				continue
			}
			row := mo.row()
			for j := 0; j < mo.n; j++ {
				if j == i {
					continue
				}
				row[mo.arcIdx[arcKey{i, j, k}]] = 1
				row[mo.arcIdx[arcKey{j, i, k}]] = -1
			}
			mo.addEq(row, 0)
		}
	}

	// A used vehicle leaves the depot exactly once.
	for k := 0; k < mo.m; k++ {
		row := mo.row()
		for j := 0; j < mo.n; j++ {
			if j == mo.depot {
				continue
			}
			row[mo.arcIdx[arcKey{mo.depot, j, k}]] = 1
		}
		row[mo.usedOff+k] = -1
		mo.addEq(row, 0)
	}

	// Anchor the depot arrival.
	anchor := mo.row()
	anchor[mo.arrOff+mo.depot] = 1
	mo.addEq(anchor, 0)

	// A vehicle only carries arcs when marked used, and is only marked used
	// when it serves someone.
	for k := 0; k < mo.m; k++ {
		for i := 0; i < mo.n; i++ {
			if i == mo.depot {
				continue
			}
			out := mo.row()
			in := mo.row()
			for j := 0; j < mo.n; j++ {
				if j == i {
					continue
				}
				out[mo.arcIdx[arcKey{i, j, k}]] = 1
				in[mo.arcIdx[arcKey{j, i, k}]] = 1
			}
			out[mo.usedOff+k] = -1
			in[mo.usedOff+k] = -1
			mo.addLE(out, 0)
			mo.addLE(in, 0)
		}
		work := mo.row()
		work[mo.usedOff+k] = 1
		for i := 0; i < mo.n; i++ {
			if i == mo.depot {
				continue
			}
			for j := 0; j < mo.n; j++ {
				if j == i {
					continue
				}
				work[mo.arcIdx[arcKey{i, j, k}]] = -1
			}
		}
		mo.addLE(work, 0)
	}

	// Window bounds on arrivals. The depot is anchored above.
	for i := 0; i < mo.n; i++ {
		if i == mo.depot {
			continue
		}
		window := mo.inst.TimeWindows[i]
		hi := window.End
		if hi > mo.horizon {
			hi = mo.horizon
		}
		upper := mo.row()
		upper[mo.arrOff+i] = 1
		mo.addLE(upper, float64(hi))
		lower := mo.row()
		lower[mo.arrOff+i] = -1
		mo.addLE(lower, -float64(window.Start))
	}

	// Time propagation along selected arcs. Legs back into the depot are
	// skipped; with the depot anchored at zero these rows double as subtour
	// elimination, so they are always emitted.
	for k := 0; k < mo.m; k++ {
		for i := 0; i < mo.n; i++ {
			for j := 0; j < mo.n; j++ {
				if i == j || j == mo.depot {
					continue
				}
				row := mo.row()
				row[mo.arrOff+i] = 1
				row[mo.arrOff+j] = -1
				row[mo.arcIdx[arcKey{i, j, k}]] = mo.bigM
				rhs := mo.bigM - float64(mo.inst.ServiceTimes[i]) - float64(mo.dur[i][j])
				mo.addLE(row, rhs)
			}
		}
	}

	// Capacity per vehicle over departures.
	for k := 0; k < mo.m; k++ {
		capacity := mo.inst.Vehicles[k].PrimaryCapacity()
		if capacity <= 0 {
			capacity = int64(1e9)
		}
		row := mo.row()
		for i := 0; i < mo.n; i++ {
			if i == mo.depot || mo.inst.Demands[i] == 0 {
				continue
			}
			for j := 0; j < mo.n; j++ {
				if j == i {
					continue
				}
				row[mo.arcIdx[arcKey{i, j, k}]] = float64(mo.inst.Demands[i])
			}
		}
		mo.addLE(row, float64(capacity))
	}

	// Binary boxes. Arc and usage variables live in [0, 1]; the branching
	// rule drives them to the endpoints.
	for idx := range mo.arcs {
		mo.addBox(idx)
	}
	for k := 0; k < mo.m; k++ {
		mo.addBox(mo.usedOff + k)
	}
}

func (mo *mipModel) addBox(idx int) {
	upper := mo.row()
	upper[idx] = 1
	mo.addLE(upper, 1)
	lower := mo.row()
	lower[idx] = -1
	mo.addLE(lower, 0)
}

// withFixes returns the inequality system extended with a pinched box per
// branching decision. Fixes ride on inequality rows rather than equalities so
// the equality system keeps full row rank no matter which arcs are pinned.
func (mo *mipModel) withFixes(fixes map[int]float64) ([][]float64, []float64) {
	if len(fixes) == 0 {
		return mo.leRows, mo.leRHS
	}
	keys := make([]int, 0, len(fixes))
	for idx := range fixes {
		keys = append(keys, idx)
	}
	sort.Ints(keys)
	rows := make([][]float64, 0, len(mo.leRows)+2*len(keys))
	rows = append(rows, mo.leRows...)
	rhs := make([]float64, 0, len(mo.leRHS)+2*len(keys))
	rhs = append(rhs, mo.leRHS...)
	for _, idx := range keys {
		upper := mo.row()
		upper[idx] = 1
		rows = append(rows, upper)
		rhs = append(rhs, fixes[idx])
		lower := mo.row()
		lower[idx] = -1
		rows = append(rows, lower)
		rhs = append(rhs, -fixes[idx])
	}
	return rows, rhs
}

// mostFractional returns the binary variable farthest from an integer, or -1
// when the relaxation is already integral.
func (mo *mipModel) mostFractional(values []float64) int {
	best := -1
	bestDist := mipTolerance
	for idx := range mo.arcs {
		if d := fractionality(values[idx]); d > bestDist {
			bestDist = d
			best = idx
		}
	}
	for k := 0; k < mo.m; k++ {
		idx := mo.usedOff + k
		if d := fractionality(values[idx]); d > bestDist {
			bestDist = d
			best = idx
		}
	}
	return best
}

func fractionality(v float64) float64 {
	return math.Abs(v - math.Round(v))
}

// extract follows the selected arcs out of the depot for each vehicle.
func (mo *mipModel) extract(values []float64, status string) []solver.Route {
	var routes []solver.Route
	for k := 0; k < mo.m; k++ {
		next := make(map[int]int, mo.n)
		for i := 0; i < mo.n; i++ {
			for j := 0; j < mo.n; j++ {
				if i == j {
					continue
				}
				if values[mo.arcIdx[arcKey{i, j, k}]] > 0.5 {
					next[i] = j
				}
			}
		}
		if len(next) == 0 {
			continue
		}

		path := []int{mo.depot}
		seen := map[int]bool{mo.depot: true}
		cur := mo.depot
		for step := 0; step <= mo.n; step++ {
			nxt, ok := next[cur]
			if !ok {
				break
			}
			path = append(path, nxt)
			if nxt == mo.depot || seen[nxt] {
				break
			}
			seen[nxt] = true
			cur = nxt
		}
		if len(path) <= 2 {
			continue
		}
		routes = append(routes, routeFromPath(mo.inst, mo.inst.Matrix, k, path, map[string]interface{}{
			"status": status,
		}))
	}
	return routes
}
