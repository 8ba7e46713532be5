package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// maxStallRestarts bounds the perturbation loop once the search stops finding
// better plans, so small instances return well before the wall clock.
const maxStallRestarts = 20

// plan is a working solution: one customer sequence per vehicle with the depot
// excluded, plus the customers currently left unserved.
type plan struct {
	routes   [][]int
	unserved map[int]bool
}

func (p *plan) clone() *plan {
	routes := make([][]int, len(p.routes))
	for i, seq := range p.routes {
		routes[i] = append([]int(nil), seq...)
	}
	unserved := make(map[int]bool, len(p.unserved))
	for node := range p.unserved {
		unserved[node] = true
	}
	return &plan{routes: routes, unserved: unserved}
}

func (p *plan) copyFrom(other *plan) {
	clone := other.clone()
	p.routes = clone.routes
	p.unserved = clone.unserved
}

// localSearch holds the immutable problem data every move probes: scaled arc
// costs, pairing maps, the vehicle fixed cost and the drop penalty.
type localSearch struct {
	inst       *solver.Instance
	n          int
	depot      int
	cost       [][]int64
	fixed      int64
	penalty    int64
	timed      bool
	deliveryOf map[int]int
	pickupOf   map[int]int
	rng        *rand.Rand
}

func newLocalSearch(inst *solver.Instance) *localSearch {
	weights := inst.Weights
	if weights.IsZero() {
		weights = solver.DefaultWeights()
	}
	hasDurations := inst.Matrix.HasDurations()

	cost := make([][]int64, inst.N)
	for i := 0; i < inst.N; i++ {
		cost[i] = make([]int64, inst.N)
		for j := 0; j < inst.N; j++ {
			if i == j {
				continue
			}
			hours := 0.0
			if hasDurations {
				hours = float64(inst.Matrix.DurationAt(i, j)) / 3600.0
			}
			weighted := weights.Distance*inst.Matrix.DistanceAt(i, j) + weights.Time*hours
			cost[i][j] = int64(math.Round(weighted * costScale))
		}
	}

	timed := hasDurations || inst.HasTimeWindows()
	for i := range inst.Vehicles {
		if inst.Vehicles[i].TimeWindow != nil {
			timed = true
		}
	}

	s := &localSearch{
		inst:       inst,
		n:          inst.N,
		depot:      inst.DepotIndex,
		cost:       cost,
		fixed:      int64(math.Round(inst.Options.EffectiveVehicleFixedCost() * costScale)),
		penalty:    dropPenalty(inst, weights),
		timed:      timed,
		deliveryOf: make(map[int]int, len(inst.Pairs)),
		pickupOf:   make(map[int]int, len(inst.Pairs)),
		// Fixed seed keeps runs reproducible for a given instance.
		rng: rand.New(rand.NewSource(1)),
	}
	for _, pair := range inst.Pairs {
		s.deliveryOf[pair.Pickup] = pair.Delivery
		s.pickupOf[pair.Delivery] = pair.Pickup
	}
	return s
}

// dropPenalty returns the per-node cost of leaving a customer unserved: the
// explicit option, else a value that dwarfs any possible arc so dropping only
// wins when serving is impossible.
func dropPenalty(inst *solver.Instance, weights solver.Weights) int64 {
	if inst.Options.DropPenalty > 0 {
		return inst.Options.DropPenalty
	}
	var maxDist, maxTime float64
	for i := range inst.Matrix.Distances {
		for _, v := range inst.Matrix.Distances[i] {
			if v > maxDist {
				maxDist = v
			}
		}
	}
	if inst.Matrix.HasDurations() {
		for i := range inst.Matrix.Durations {
			for _, v := range inst.Matrix.Durations[i] {
				if float64(v) > maxTime {
					maxTime = float64(v)
				}
			}
		}
		maxTime /= 3600.0
	} else {
		maxTime = maxDist
	}
	estimate := weights.Distance*maxDist + weights.Time*maxTime
	penalty := int64(math.Round(estimate * 1e6))
	if penalty < 1e9 {
		penalty = 1e9
	}
	return penalty
}

func (s *localSearch) isPaired(node int) bool {
	if _, ok := s.deliveryOf[node]; ok {
		return true
	}
	_, ok := s.pickupOf[node]
	return ok
}

func (s *localSearch) travelTime(i, j int) int64 {
	if s.inst.Matrix.HasDurations() {
		return s.inst.Matrix.DurationAt(i, j)
	}
	return int64(math.Round(s.inst.Matrix.DistanceAt(i, j)))
}

// routeFeasible checks one vehicle sequence against pairing, capacity,
// distance and time constraints. Service must start within each node's
// window; arriving early waits.
func (s *localSearch) routeFeasible(v int, seq []int) bool {
	veh := &s.inst.Vehicles[v]

	if len(s.deliveryOf) > 0 {
		pos := make(map[int]int, len(seq))
		for i, node := range seq {
			pos[node] = i
		}
		for i, node := range seq {
			if delivery, ok := s.deliveryOf[node]; ok {
				j, here := pos[delivery]
				if !here || j < i {
					return false
				}
			}
			if pickup, ok := s.pickupOf[node]; ok {
				if _, here := pos[pickup]; !here {
					return false
				}
			}
		}
	}

	if capacity := veh.PrimaryCapacity(); capacity > 0 {
		var load int64
		for _, node := range seq {
			load += s.inst.Demands[node]
			if load > capacity || load < 0 {
				return false
			}
		}
	}

	if veh.MaxDistance > 0 {
		var meters float64
		prev := s.depot
		for _, node := range seq {
			meters += s.inst.Matrix.DistanceAt(prev, node)
			prev = node
		}
		meters += s.inst.Matrix.DistanceAt(prev, s.depot)
		if int64(math.Round(meters)) > veh.MaxDistance {
			return false
		}
	}

	if !s.timed {
		return true
	}

	start := int64(0)
	end := solver.HorizonSeconds
	if veh.TimeWindow != nil {
		start, end = veh.TimeWindow.Start, veh.TimeWindow.End
	}
	clock := start + s.inst.ServiceTimes[s.depot]
	prev := s.depot
	for _, node := range seq {
		clock += s.travelTime(prev, node)
		window := s.inst.TimeWindows[node]
		if clock < window.Start {
			clock = window.Start
		}
		if clock > window.End {
			return false
		}
		clock += s.inst.ServiceTimes[node]
		prev = node
	}
	clock += s.travelTime(prev, s.depot)
	if clock > end {
		return false
	}
	if veh.MaxDuration > 0 && clock-start > veh.MaxDuration {
		return false
	}
	return true
}

func (s *localSearch) routeCost(seq []int) int64 {
	if len(seq) == 0 {
		return 0
	}
	total := s.fixed
	prev := s.depot
	for _, node := range seq {
		total += s.cost[prev][node]
		prev = node
	}
	return total + s.cost[prev][s.depot]
}

func (s *localSearch) planCost(p *plan) int64 {
	var total int64
	for _, seq := range p.routes {
		total += s.routeCost(seq)
	}
	return total + s.penalty*int64(len(p.unserved))
}

// construct builds the initial plan. Pickup/delivery pairs are always placed
// first by paired cheapest insertion so every strategy starts from a
// pairing-feasible skeleton.
func (s *localSearch) construct(strategy string) *plan {
	p := &plan{
		routes:   make([][]int, len(s.inst.Vehicles)),
		unserved: make(map[int]bool),
	}
	for _, node := range s.inst.Customers() {
		p.unserved[node] = true
	}

	s.insertPairs(p)

	switch normalizeStrategy(strategy) {
	case "savings":
		s.constructSavings(p)
	case "nearest":
		s.constructNearest(p)
	default:
		s.constructCheapestArc(p)
	}
	return p
}

// normalizeStrategy maps the accepted first-solution spellings onto the three
// implemented constructions. Unknown names fall back to cheapest arc.
func normalizeStrategy(name string) string {
	lowered := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch {
	case strings.Contains(lowered, "savings"):
		return "savings"
	case strings.Contains(lowered, "nearest"), strings.Contains(lowered, "neighbor"):
		return "nearest"
	default:
		return "cheapest_arc"
	}
}

func (s *localSearch) insertPairs(p *plan) {
	for _, pair := range s.inst.Pairs {
		if !p.unserved[pair.Pickup] || !p.unserved[pair.Delivery] {
			continue
		}
		v, seq, ok := s.bestPairInsertion(p, pair.Pickup, pair.Delivery)
		if !ok {
			continue
		}
		p.routes[v] = seq
		delete(p.unserved, pair.Pickup)
		delete(p.unserved, pair.Delivery)
	}
}

func (s *localSearch) constructCheapestArc(p *plan) {
	for {
		bestNode, bestV := -1, -1
		var bestSeq []int
		bestDelta := int64(math.MaxInt64)
		for node := range p.unserved {
			if s.isPaired(node) {
				continue
			}
			v, seq, delta, ok := s.bestInsertion(p, node)
			if !ok {
				continue
			}
			if delta < bestDelta || (delta == bestDelta && node < bestNode) {
				bestNode, bestV, bestSeq, bestDelta = node, v, seq, delta
			}
		}
		if bestNode < 0 {
			return
		}
		p.routes[bestV] = bestSeq
		delete(p.unserved, bestNode)
	}
}

func (s *localSearch) constructNearest(p *plan) {
	for v := range p.routes {
		cur := s.depot
		if len(p.routes[v]) > 0 {
			cur = p.routes[v][len(p.routes[v])-1]
		}
		for {
			bestNode := -1
			bestCost := int64(math.MaxInt64)
			for node := range p.unserved {
				if s.isPaired(node) {
					continue
				}
				c := s.cost[cur][node]
				if c > bestCost || (c == bestCost && bestNode >= 0 && node > bestNode) {
					continue
				}
				candidate := append(append([]int(nil), p.routes[v]...), node)
				if !s.routeFeasible(v, candidate) {
					continue
				}
				bestNode, bestCost = node, c
			}
			if bestNode < 0 {
				break
			}
			p.routes[v] = append(p.routes[v], bestNode)
			delete(p.unserved, bestNode)
			cur = bestNode
		}
	}
	// Greedy appends can strand customers that still fit mid-route.
	s.constructCheapestArc(p)
}

// constructSavings runs Clarke-Wright merges over tentative single-customer
// routes, then maps the merged routes onto the fleet.
func (s *localSearch) constructSavings(p *plan) {
	var singles []int
	for node := range p.unserved {
		if !s.isPaired(node) {
			singles = append(singles, node)
		}
	}
	sort.Ints(singles)
	if len(singles) == 0 {
		return
	}

	tentative := make([][]int, len(singles))
	routeOf := make(map[int]int, len(singles))
	for idx, node := range singles {
		tentative[idx] = []int{node}
		routeOf[node] = idx
	}

	type saving struct {
		i, j  int
		value int64
	}
	var savings []saving
	for _, i := range singles {
		for _, j := range singles {
			if i == j {
				continue
			}
			savings = append(savings, saving{
				i:     i,
				j:     j,
				value: s.cost[i][s.depot] + s.cost[s.depot][j] - s.cost[i][j],
			})
		}
	}
	sort.Slice(savings, func(a, b int) bool {
		if savings[a].value != savings[b].value {
			return savings[a].value > savings[b].value
		}
		if savings[a].i != savings[b].i {
			return savings[a].i < savings[b].i
		}
		return savings[a].j < savings[b].j
	})

	for _, sv := range savings {
		ri, rj := routeOf[sv.i], routeOf[sv.j]
		if ri == rj || tentative[ri] == nil || tentative[rj] == nil {
			continue
		}
		head, tail := tentative[ri], tentative[rj]
		if head[len(head)-1] != sv.i || tail[0] != sv.j {
			continue
		}
		merged := append(append([]int(nil), head...), tail...)
		if !s.anyVehicleFeasible(merged) {
			continue
		}
		tentative[ri] = merged
		tentative[rj] = nil
		for _, node := range tail {
			routeOf[node] = ri
		}
	}

	var built [][]int
	for _, seq := range tentative {
		if seq != nil {
			built = append(built, seq)
		}
	}
	// Largest routes claim vehicles first when the fleet is smaller than the
	// merge result.
	sort.Slice(built, func(a, b int) bool {
		if len(built[a]) != len(built[b]) {
			return len(built[a]) > len(built[b])
		}
		return built[a][0] < built[b][0]
	})
	for _, seq := range built {
		for v := range p.routes {
			if len(p.routes[v]) > 0 || !s.routeFeasible(v, seq) {
				continue
			}
			p.routes[v] = seq
			for _, node := range seq {
				delete(p.unserved, node)
			}
			break
		}
	}

	// Whatever found no vehicle goes through cheapest insertion.
	s.constructCheapestArc(p)
}

func (s *localSearch) anyVehicleFeasible(seq []int) bool {
	for v := range s.inst.Vehicles {
		if s.routeFeasible(v, seq) {
			return true
		}
	}
	return false
}

// bestInsertion finds the cheapest feasible placement of a single customer,
// returning the vehicle and the resulting sequence.
func (s *localSearch) bestInsertion(p *plan, node int) (int, []int, int64, bool) {
	bestV := -1
	var bestSeq []int
	bestDelta := int64(math.MaxInt64)
	for v := range p.routes {
		seq := p.routes[v]
		base := s.routeCost(seq)
		for i := 0; i <= len(seq); i++ {
			candidate := insertAt(seq, i, node)
			if !s.routeFeasible(v, candidate) {
				continue
			}
			if delta := s.routeCost(candidate) - base; delta < bestDelta {
				bestDelta = delta
				bestV = v
				bestSeq = candidate
			}
		}
	}
	return bestV, bestSeq, bestDelta, bestV >= 0
}

// bestPairInsertion finds the cheapest feasible placement of a pickup and its
// delivery in one vehicle, pickup first.
func (s *localSearch) bestPairInsertion(p *plan, pickup, delivery int) (int, []int, bool) {
	bestV := -1
	var bestSeq []int
	bestDelta := int64(math.MaxInt64)
	for v := range p.routes {
		seq := p.routes[v]
		base := s.routeCost(seq)
		for i := 0; i <= len(seq); i++ {
			withPickup := insertAt(seq, i, pickup)
			for j := i + 1; j <= len(withPickup); j++ {
				candidate := insertAt(withPickup, j, delivery)
				if !s.routeFeasible(v, candidate) {
					continue
				}
				if delta := s.routeCost(candidate) - base; delta < bestDelta {
					bestDelta = delta
					bestV = v
					bestSeq = candidate
				}
			}
		}
	}
	return bestV, bestSeq, bestV >= 0
}

// improve descends to a local optimum with the operator passes, then perturbs
// and repeats, keeping the best plan seen. Returns the termination state.
func (s *localSearch) improve(ctx context.Context, p *plan, deadline time.Time) string {
	best := p.clone()
	bestCost := s.planCost(best)
	stalls := 0
	status := "converged"

descend:
	for {
		for {
			if s.expired(ctx, deadline) {
				status = "time_limit"
				break descend
			}
			if !s.descendOnce(p) {
				break
			}
		}
		if cost := s.planCost(p); cost < bestCost {
			bestCost = cost
			best = p.clone()
			stalls = 0
		} else {
			stalls++
		}
		if stalls >= maxStallRestarts {
			break
		}
		if s.expired(ctx, deadline) {
			status = "time_limit"
			break
		}
		s.perturb(p)
	}

	p.copyFrom(best)
	return status
}

func (s *localSearch) descendOnce(p *plan) bool {
	improved := false
	if s.reinsertPass(p) {
		improved = true
	}
	if s.relocatePass(p) {
		improved = true
	}
	if s.swapPass(p) {
		improved = true
	}
	if s.twoOptPass(p) {
		improved = true
	}
	if s.orOptPass(p) {
		improved = true
	}
	return improved
}

func (s *localSearch) expired(ctx context.Context, deadline time.Time) bool {
	return ctx.Err() != nil || time.Now().After(deadline)
}

// reinsertPass tries to serve dropped customers; any placement beats the drop
// penalty by construction.
func (s *localSearch) reinsertPass(p *plan) bool {
	if len(p.unserved) == 0 {
		return false
	}
	for _, pair := range s.inst.Pairs {
		if !p.unserved[pair.Pickup] || !p.unserved[pair.Delivery] {
			continue
		}
		if v, seq, ok := s.bestPairInsertion(p, pair.Pickup, pair.Delivery); ok {
			p.routes[v] = seq
			delete(p.unserved, pair.Pickup)
			delete(p.unserved, pair.Delivery)
			return true
		}
	}
	for _, node := range sortedKeys(p.unserved) {
		if s.isPaired(node) {
			continue
		}
		if v, seq, _, ok := s.bestInsertion(p, node); ok {
			p.routes[v] = seq
			delete(p.unserved, node)
			return true
		}
	}
	return false
}

// relocatePass moves one unpaired customer to the first position that lowers
// the plan cost.
func (s *localSearch) relocatePass(p *plan) bool {
	for v1 := range p.routes {
		for i := 0; i < len(p.routes[v1]); i++ {
			node := p.routes[v1][i]
			if s.isPaired(node) {
				continue
			}
			removed := removeAt(p.routes[v1], i)
			removalDelta := s.routeCost(removed) - s.routeCost(p.routes[v1])
			for v2 := range p.routes {
				target := p.routes[v2]
				if v2 == v1 {
					target = removed
				}
				for j := 0; j <= len(target); j++ {
					candidate := insertAt(target, j, node)
					if !s.routeFeasible(v2, candidate) {
						continue
					}
					var delta int64
					if v2 == v1 {
						delta = s.routeCost(candidate) - s.routeCost(p.routes[v1])
					} else {
						delta = removalDelta + s.routeCost(candidate) - s.routeCost(p.routes[v2])
					}
					if delta < 0 {
						if v2 == v1 {
							p.routes[v1] = candidate
						} else {
							p.routes[v1] = removed
							p.routes[v2] = candidate
						}
						return true
					}
				}
			}
		}
	}
	return false
}

// swapPass exchanges two unpaired customers within or across routes.
func (s *localSearch) swapPass(p *plan) bool {
	for v1 := range p.routes {
		for i := range p.routes[v1] {
			a := p.routes[v1][i]
			if s.isPaired(a) {
				continue
			}
			for v2 := v1; v2 < len(p.routes); v2++ {
				startJ := 0
				if v2 == v1 {
					startJ = i + 1
				}
				for j := startJ; j < len(p.routes[v2]); j++ {
					b := p.routes[v2][j]
					if s.isPaired(b) {
						continue
					}
					if v1 == v2 {
						candidate := append([]int(nil), p.routes[v1]...)
						candidate[i], candidate[j] = candidate[j], candidate[i]
						if !s.routeFeasible(v1, candidate) {
							continue
						}
						if s.routeCost(candidate) < s.routeCost(p.routes[v1]) {
							p.routes[v1] = candidate
							return true
						}
						continue
					}
					s1 := append([]int(nil), p.routes[v1]...)
					s2 := append([]int(nil), p.routes[v2]...)
					s1[i], s2[j] = b, a
					if !s.routeFeasible(v1, s1) || !s.routeFeasible(v2, s2) {
						continue
					}
					delta := s.routeCost(s1) + s.routeCost(s2) -
						s.routeCost(p.routes[v1]) - s.routeCost(p.routes[v2])
					if delta < 0 {
						p.routes[v1], p.routes[v2] = s1, s2
						return true
					}
				}
			}
		}
	}
	return false
}

// twoOptPass reverses an intra-route segment. Pair precedence violations are
// rejected by the feasibility check.
func (s *localSearch) twoOptPass(p *plan) bool {
	for v := range p.routes {
		seq := p.routes[v]
		for i := 0; i < len(seq)-1; i++ {
			for j := i + 1; j < len(seq); j++ {
				candidate := append([]int(nil), seq...)
				reverse(candidate[i : j+1])
				if !s.routeFeasible(v, candidate) {
					continue
				}
				if s.routeCost(candidate) < s.routeCost(seq) {
					p.routes[v] = candidate
					return true
				}
			}
		}
	}
	return false
}

// orOptPass moves chains of two or three consecutive customers within or
// across routes. Chains may carry whole pairs; splitting one is rejected by
// the feasibility check.
func (s *localSearch) orOptPass(p *plan) bool {
	for v1 := range p.routes {
		for length := 2; length <= 3; length++ {
			seq := p.routes[v1]
			for i := 0; i+length <= len(seq); i++ {
				chain := append([]int(nil), seq[i:i+length]...)
				rest := append(append([]int(nil), seq[:i]...), seq[i+length:]...)
				for v2 := range p.routes {
					target := p.routes[v2]
					if v2 == v1 {
						target = rest
					}
					for j := 0; j <= len(target); j++ {
						candidate := insertChain(target, j, chain)
						if v2 == v1 {
							if !s.routeFeasible(v1, candidate) {
								continue
							}
							if s.routeCost(candidate) < s.routeCost(seq) {
								p.routes[v1] = candidate
								return true
							}
							continue
						}
						if !s.routeFeasible(v1, rest) || !s.routeFeasible(v2, candidate) {
							continue
						}
						delta := s.routeCost(rest) + s.routeCost(candidate) -
							s.routeCost(seq) - s.routeCost(p.routes[v2])
						if delta < 0 {
							p.routes[v1] = rest
							p.routes[v2] = candidate
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// perturb applies a double-bridge to the longest route plus a few random
// relocations, accepting only feasible results.
func (s *localSearch) perturb(p *plan) {
	v := longestRouteIndex(p)
	if v >= 0 && len(p.routes[v]) >= 4 {
		seq := p.routes[v]
		n := len(seq)
		a := 1 + s.rng.Intn(n-3)
		b := a + 1 + s.rng.Intn(n-a-2)
		c := b + 1 + s.rng.Intn(n-b-1)
		candidate := make([]int, 0, n)
		candidate = append(candidate, seq[:a]...)
		candidate = append(candidate, seq[b:c]...)
		candidate = append(candidate, seq[a:b]...)
		candidate = append(candidate, seq[c:]...)
		if s.routeFeasible(v, candidate) {
			p.routes[v] = candidate
		}
	}

	for try := 0; try < 4; try++ {
		v1 := s.rng.Intn(len(p.routes))
		if len(p.routes[v1]) == 0 {
			continue
		}
		i := s.rng.Intn(len(p.routes[v1]))
		node := p.routes[v1][i]
		if s.isPaired(node) {
			continue
		}
		v2 := s.rng.Intn(len(p.routes))
		removed := removeAt(p.routes[v1], i)
		target := p.routes[v2]
		if v2 == v1 {
			target = removed
		}
		j := s.rng.Intn(len(target) + 1)
		candidate := insertAt(target, j, node)
		if !s.routeFeasible(v2, candidate) {
			continue
		}
		if v2 == v1 {
			p.routes[v1] = candidate
		} else {
			p.routes[v1] = removed
			p.routes[v2] = candidate
		}
	}
}

func insertAt(seq []int, pos, node int) []int {
	out := make([]int, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, node)
	return append(out, seq[pos:]...)
}

func insertChain(seq []int, pos int, chain []int) []int {
	out := make([]int, 0, len(seq)+len(chain))
	out = append(out, seq[:pos]...)
	out = append(out, chain...)
	return append(out, seq[pos:]...)
}

func removeAt(seq []int, pos int) []int {
	out := make([]int, 0, len(seq)-1)
	out = append(out, seq[:pos]...)
	return append(out, seq[pos+1:]...)
}

func reverse(seq []int) {
	for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = seq[j], seq[i]
	}
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for node := range set {
		out = append(out, node)
	}
	sort.Ints(out)
	return out
}

func longestRouteIndex(p *plan) int {
	best, bestLen := -1, 0
	for v, seq := range p.routes {
		if len(seq) > bestLen {
			best, bestLen = v, len(seq)
		}
	}
	return best
}
