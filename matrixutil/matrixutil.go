// Package matrixutil implements elementwise and row oriented arithmetic over
// dense matrices for use inside iterative training loops.
//
// Functions that mutate take the target matrix as their first argument and
// never touch any other matrix argument. Every index and extent is validated
// before any cell is written, so a call that returns an error leaves the
// target as it was.
//
// Numeric promotion: in place operations use the element type's own
// arithmetic. Averages, norms, dot products and row differences are computed
// in float64 with every cell converted before it is multiplied or subtracted,
// so narrow integer types do not overflow. The float64 accumulator holds
// integers exactly only up to 2^53, so int64 and uint64 cells beyond that
// magnitude lose precision in those results.
package matrixutil

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-densematrix/dense"
	"github.com/aouyang1/go-densematrix/unrolled"
	"gonum.org/v1/gonum/stat"
)

// IncCell adds v to the value at row i and column j
func IncCell[T dense.Number](m *dense.Dense[T], i, j int, v T) error {
	row, err := m.RowView(i)
	if err != nil {
		return err
	}
	if err := m.CheckCol(j); err != nil {
		return err
	}
	row[j] += v
	return nil
}

// IncMatrix adds every cell of m2 into the matching cell of m1
func IncMatrix[T dense.Number](m1, m2 *dense.Dense[T]) error {
	if err := sameShape(m1, m2); err != nil {
		return err
	}
	unrolled.Add(m1.RawData(), m2.RawData())
	return nil
}

// IncScalar adds v to every cell of m
func IncScalar[T dense.Number](m *dense.Dense[T], v T) {
	unrolled.AddConst(v, m.RawData())
}

// MultiplyScalar scales every cell of m by s
func MultiplyScalar[T dense.Number](m *dense.Dense[T], s T) {
	unrolled.Scale(s, m.RawData())
}

// ColumnAverage returns the mean of every value in column col
func ColumnAverage[T dense.Number](m *dense.Dense[T], col int) (float64, error) {
	if err := m.CheckCol(col); err != nil {
		return 0, err
	}

	rows, cols := m.Dims()
	data := m.RawData()
	var sum float64
	for i := 0; i < rows; i++ {
		sum += float64(data[i*cols+col])
	}
	return sum / float64(rows), nil
}

// RowAverage returns the mean of every value in row
func RowAverage[T dense.Number](m *dense.Dense[T], row int) (float64, error) {
	view, err := m.RowView(row)
	if err != nil {
		return 0, err
	}
	if vf, ok := any(view).([]float64); ok {
		return stat.Mean(vf, nil), nil
	}
	return unrolled.Sum(view) / float64(len(view)), nil
}

// FrobeniusNorm returns the square root of the sum of the squares of every cell
func FrobeniusNorm[T dense.Number](m *dense.Dense[T]) float64 {
	return math.Sqrt(unrolled.SumSquares(m.RawData()))
}

// RowDotVector returns the scalar product of row with vec
func RowDotVector[T dense.Number](m *dense.Dense[T], row int, vec []T) (float64, error) {
	view, err := m.RowView(row)
	if err != nil {
		return 0, err
	}
	if len(vec) != len(view) {
		return 0, fmt.Errorf("vector of length %d against %d columns, %w", len(vec), len(view), dense.ErrDimensionMismatch)
	}
	return unrolled.Dot(view, vec), nil
}

// RowDotRow returns the scalar product of row r1 of m1 with row r2 of m2. m1 and
// m2 may be the same matrix.
func RowDotRow[T dense.Number](m1 *dense.Dense[T], r1 int, m2 *dense.Dense[T], r2 int) (float64, error) {
	a, b, err := rowPair(m1, r1, m2, r2)
	if err != nil {
		return 0, err
	}
	return unrolled.Dot(a, b), nil
}

// RowDifference returns a new slice holding row r1 of m1 minus row r2 of m2
func RowDifference[T dense.Number](m1 *dense.Dense[T], r1 int, m2 *dense.Dense[T], r2 int) ([]float64, error) {
	return RowDifferenceTo(nil, m1, r1, m2, r2)
}

// RowDifferenceTo writes row r1 of m1 minus row r2 of m2 into dst and returns
// it. A nil dst is allocated, otherwise it must have one entry per column.
func RowDifferenceTo[T dense.Number](dst []float64, m1 *dense.Dense[T], r1 int, m2 *dense.Dense[T], r2 int) ([]float64, error) {
	a, b, err := rowPair(m1, r1, m2, r2)
	if err != nil {
		return nil, err
	}
	if dst != nil && len(dst) != len(a) {
		return nil, fmt.Errorf("output of length %d against %d columns, %w", len(dst), len(a), dense.ErrDimensionMismatch)
	}
	return unrolled.SubTo(dst, a, b), nil
}

// RowDotRowDifference returns the scalar product of row r1 of m1 with the
// difference of row r2 of m2 and row r3 of m3. The difference is never
// materialized so the call does not allocate.
func RowDotRowDifference[T dense.Number](m1 *dense.Dense[T], r1 int, m2 *dense.Dense[T], r2 int, m3 *dense.Dense[T], r3 int) (float64, error) {
	a, b, err := rowPair(m1, r1, m2, r2)
	if err != nil {
		return 0, err
	}
	c, err := m3.RowView(r3)
	if err != nil {
		return 0, err
	}
	if len(c) != len(a) {
		return 0, fmt.Errorf("third matrix has %d columns against %d, %w", len(c), len(a), dense.ErrDimensionMismatch)
	}
	return unrolled.DotDiff(a, b, c), nil
}

// Max returns the largest value in m. A matrix that was never written to
// returns the zero value of T, as does a zero value Dense with no storage.
// NaN cells are skipped.
func Max[T dense.Number](m *dense.Dense[T]) T {
	data := m.RawData()
	if len(data) == 0 {
		var zero T
		return zero
	}
	return unrolled.Max(data)
}

func sameShape[T dense.Number](m1, m2 *dense.Dense[T]) error {
	r1, c1 := m1.Dims()
	r2, c2 := m2.Dims()
	if r1 != r2 || c1 != c2 {
		return fmt.Errorf("%dx%d against %dx%d, %w", r1, c1, r2, c2, dense.ErrDimensionMismatch)
	}
	return nil
}

func rowPair[T dense.Number](m1 *dense.Dense[T], r1 int, m2 *dense.Dense[T], r2 int) ([]T, []T, error) {
	if m1.Cols() != m2.Cols() {
		return nil, nil, fmt.Errorf("%d columns against %d, %w", m1.Cols(), m2.Cols(), dense.ErrDimensionMismatch)
	}
	a, err := m1.RowView(r1)
	if err != nil {
		return nil, nil, err
	}
	b, err := m2.RowView(r2)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
