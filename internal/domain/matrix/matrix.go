package matrix

import (
	"math"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Sentinel values for unreachable pairs. Matrices handed to engines never
// contain infinities; unreachable cells carry these finite markers instead.
const (
	UnreachableDistanceMeters float64 = 1e9 // 10^6 km
	UnreachableDurationSecs   int64   = 1e7
)

// Matrix holds pairwise travel costs between an origin set (rows) and a
// destination set (columns). Distances are meters, durations are seconds.
// Durations may be nil when the producing adapter cannot estimate them.
type Matrix struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]int64   `json:"durations,omitempty"`
}

// NewSquare allocates an n-by-n matrix with zeroed distances and durations.
func NewSquare(n int) *Matrix {
	m := &Matrix{
		Distances: make([][]float64, n),
		Durations: make([][]int64, n),
	}
	for i := 0; i < n; i++ {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]int64, n)
	}
	return m
}

// Clone returns a deep copy. Callers that rewrite cells in place clone first
// so shared tables, such as cached benchmark matrices, stay untouched.
func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return nil
	}
	out := &Matrix{}
	if m.Distances != nil {
		out.Distances = make([][]float64, len(m.Distances))
		for i, row := range m.Distances {
			out.Distances[i] = append([]float64(nil), row...)
		}
	}
	if m.Durations != nil {
		out.Durations = make([][]int64, len(m.Durations))
		for i, row := range m.Durations {
			out.Durations[i] = append([]int64(nil), row...)
		}
	}
	return out
}

// Size returns the number of rows, preferring distances over durations.
func (m *Matrix) Size() int {
	if m == nil {
		return 0
	}
	if len(m.Distances) > 0 {
		return len(m.Distances)
	}
	return len(m.Durations)
}

// IsEmpty reports whether the matrix carries no usable table.
func (m *Matrix) IsEmpty() bool {
	return m == nil || (len(m.Distances) == 0 && len(m.Durations) == 0)
}

// Validate checks the invariants required at the engine boundary: square
// tables, zero diagonal, matching duration shape, and no non-finite values.
func (m *Matrix) Validate() error {
	n := len(m.Distances)
	for i, row := range m.Distances {
		if len(row) != n {
			return shared.NewInputError("matrix.distances", "matrix must be square")
		}
		for j, v := range row {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return shared.NewInputError("matrix.distances", "matrix must not contain non-finite values")
			}
			if i == j && v != 0 {
				return shared.NewInputError("matrix.distances", "diagonal must be zero")
			}
		}
	}
	if len(m.Durations) > 0 {
		if len(m.Durations) != n && n > 0 {
			return shared.NewInputError("matrix.durations", "durations shape must match distances")
		}
		w := len(m.Durations)
		for i, row := range m.Durations {
			if len(row) != w && n == 0 {
				return shared.NewInputError("matrix.durations", "durations must be square")
			}
			if n > 0 && len(row) != n {
				return shared.NewInputError("matrix.durations", "durations shape must match distances")
			}
			if i < len(row) && row[i] != 0 {
				return shared.NewInputError("matrix.durations", "diagonal must be zero")
			}
		}
	}
	return nil
}

// ZeroDiagonal forces distances[i][i] = 0 and durations[i][i] = 0 on square
// tables. Adapters call it before returning so rounding noise on the diagonal
// never leaks out.
func (m *Matrix) ZeroDiagonal() {
	for i := range m.Distances {
		if i < len(m.Distances[i]) {
			m.Distances[i][i] = 0
		}
	}
	for i := range m.Durations {
		if i < len(m.Durations[i]) {
			m.Durations[i][i] = 0
		}
	}
}

// ClampUnreachable replaces non-finite or negative cells with the sentinel
// markers.
func (m *Matrix) ClampUnreachable() {
	for i := range m.Distances {
		for j, v := range m.Distances[i] {
			if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
				m.Distances[i][j] = UnreachableDistanceMeters
			}
		}
	}
	for i := range m.Durations {
		for j, v := range m.Durations[i] {
			if v < 0 {
				m.Durations[i][j] = UnreachableDurationSecs
			}
		}
	}
}

// RoundMeters rounds every distance cell to an integral meter value.
func (m *Matrix) RoundMeters() {
	for i := range m.Distances {
		for j, v := range m.Distances[i] {
			m.Distances[i][j] = math.Round(v)
		}
	}
}

// DistanceAt returns distances[i][j], tolerating missing tables.
func (m *Matrix) DistanceAt(i, j int) float64 {
	if m == nil || i >= len(m.Distances) || j >= len(m.Distances[i]) {
		return 0
	}
	return m.Distances[i][j]
}

// DurationAt returns durations[i][j], tolerating missing tables.
func (m *Matrix) DurationAt(i, j int) int64 {
	if m == nil || i >= len(m.Durations) || j >= len(m.Durations[i]) {
		return 0
	}
	return m.Durations[i][j]
}

// HasDurations reports whether a duration table is present.
func (m *Matrix) HasDurations() bool {
	return m != nil && len(m.Durations) > 0
}
