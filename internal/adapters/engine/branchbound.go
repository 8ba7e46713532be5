package engine

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

// mipTolerance is the distance from an integer below which a relaxation value
// counts as integral.
const mipTolerance = 1e-6

// Internal branch-and-bound outcomes, before they are mapped onto the public
// error types.
const (
	bbOptimal         = "optimal"
	bbFeasibleStopped = "feasible_stopped"
	bbInfeasible      = "infeasible"
	bbNoIncumbent     = "stopped_no_incumbent"
)

// bbNode is one subproblem: the binaries pinned so far plus the parent bound
// used for best-first ordering.
type bbNode struct {
	fixes map[int]float64
	bound float64
}

type bbQueue []*bbNode

func (q bbQueue) Len() int            { return len(q) }
func (q bbQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q bbQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *bbQueue) Push(x interface{}) { *q = append(*q, x.(*bbNode)) }
func (q *bbQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

// branchAndBound explores LP relaxations best-first, branching on the most
// fractional binary. It returns the incumbent assignment and one of the
// internal outcomes; the error is reserved for backend failures.
func branchAndBound(ctx context.Context, model *mipModel, deadline time.Time) ([]float64, string, error) {
	queue := &bbQueue{{fixes: map[int]float64{}, bound: math.Inf(-1)}}
	heap.Init(queue)

	var incumbent []float64
	incumbentCost := math.Inf(1)

	for queue.Len() > 0 {
		if ctx.Err() != nil || time.Now().After(deadline) {
			if incumbent != nil {
				return incumbent, bbFeasibleStopped, nil
			}
			return nil, bbNoIncumbent, nil
		}

		node := heap.Pop(queue).(*bbNode)
		if node.bound >= incumbentCost-1e-9 {
			continue
		}

		leRows, leRHS := model.withFixes(node.fixes)
		result, err := solveRelaxation(model.objective, leRows, leRHS, model.eqRows, model.eqRHS)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				if len(node.fixes) == 0 {
					return nil, bbInfeasible, nil
				}
				continue
			}
			return nil, "", err
		}
		if result.objective >= incumbentCost-1e-9 {
			continue
		}

		branchVar := model.mostFractional(result.values)
		if branchVar < 0 {
			incumbent = result.values
			incumbentCost = result.objective
			continue
		}

		for _, value := range []float64{0, 1} {
			fixes := make(map[int]float64, len(node.fixes)+1)
			for idx, v := range node.fixes {
				fixes[idx] = v
			}
			fixes[branchVar] = value
			heap.Push(queue, &bbNode{fixes: fixes, bound: result.objective})
		}
	}

	if incumbent != nil {
		return incumbent, bbOptimal, nil
	}
	return nil, bbInfeasible, nil
}
