package engine

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// lpResult is one relaxation solve in the original variable space.
type lpResult struct {
	objective float64
	values    []float64
}

// solveRelaxation minimizes c over {G x <= h, A x = b} with free x. The
// general form is converted to gonum's standard form, whose variable vector
// is [x+; x-; slacks]; the original values are recovered as x+ minus x-.
func solveRelaxation(c []float64, leRows [][]float64, leRHS []float64, eqRows [][]float64, eqRHS []float64) (*lpResult, error) {
	nVar := len(c)

	var g mat.Matrix
	if len(leRows) > 0 {
		g = rowsToDense(leRows, nVar)
	}
	var a mat.Matrix
	if len(eqRows) > 0 {
		a = rowsToDense(eqRows, nVar)
	}

	cNew, aNew, bNew := lp.Convert(c, g, leRHS, a, eqRHS)
	objective, xNew, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	if err != nil {
		return nil, err
	}

	values := make([]float64, nVar)
	for i := range values {
		values[i] = xNew[i] - xNew[nVar+i]
	}
	return &lpResult{objective: objective, values: values}, nil
}

func rowsToDense(rows [][]float64, cols int) *mat.Dense {
	dense := mat.NewDense(len(rows), cols, nil)
	for r, row := range rows {
		dense.SetRow(r, row)
	}
	return dense
}
