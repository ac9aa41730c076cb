package dense

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	_ mat.Matrix   = (*Dense[float64])(nil)
	_ fmt.Stringer = (*Dense[int])(nil)
)

// At returns the value at row i and column j as a float64. Unlike Get it panics
// on an invalid index, matching the gonum mat.Matrix contract.
func (m *Dense[T]) At(i, j int) float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.cols {
		panic(mat.ErrColAccess)
	}
	return float64(m.data[i*m.cols+j])
}

// T returns an implicit transpose for use with gonum routines. Use Transpose for
// a materialized copy.
func (m *Dense[E]) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// ToGonum copies the matrix into a gonum dense matrix of float64
func (m *Dense[T]) ToGonum() *mat.Dense {
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.rows, m.cols, data)
}

// FromGonum copies any gonum matrix into a new Dense. Values are converted with
// a Go conversion so integer element types truncate toward zero.
func FromGonum[T Number](a mat.Matrix) (*Dense[T], error) {
	if a == nil {
		return nil, fmt.Errorf("nil gonum matrix, %w", ErrInvalidDim)
	}
	rows, cols := a.Dims()
	m, err := New[T](rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i*cols+j] = T(a.At(i, j))
		}
	}
	return m, nil
}

func (m *Dense[T]) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m, mat.Squeeze()))
}
