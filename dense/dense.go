package dense

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	ErrInvalidDim        = errors.New("dimensions must be positive")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Number is the set of element types a Dense matrix can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// Dense is a fixed size matrix stored in row major order where the first cols
// entries of the stored slice are the first row of the matrix.
// e.g. [][]float64{{1.0, 2.0}, {3.0, 4.0}, {5.0, 6.0}} would be stored like so,
// {1.0, 2.0, 3.0, 4.0, 5.0, 6.0}.
//
// Build matrices with New, NewFromRows or FromGonum. A zero value Dense has no
// rows or columns, so every indexed access on it fails.
type Dense[T Number] struct {
	data []T
	rows int
	cols int
}

// New allocates a rows by cols matrix with every cell set to the zero value of T.
func New[T Number](rows, cols int) (*Dense[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("rows=%d cols=%d, %w", rows, cols, ErrInvalidDim)
	}
	return &Dense[T]{
		data: make([]T, rows*cols),
		rows: rows,
		cols: cols,
	}, nil
}

// NewFromRows copies a 2D slice into a new matrix. Every row must have the same
// length.
func NewFromRows[T Number](x [][]T) (*Dense[T], error) {
	rows, cols, err := deriveShape(x)
	if err != nil {
		return nil, err
	}

	data := make([]T, 0, rows*cols)
	for _, row := range x {
		data = append(data, row...)
	}
	return &Dense[T]{
		data: data,
		rows: rows,
		cols: cols,
	}, nil
}

func deriveShape[T Number](x [][]T) (int, int, error) {
	rows := len(x)
	if rows == 0 {
		return 0, 0, fmt.Errorf("no rows, %w", ErrInvalidDim)
	}

	cols := len(x[0])
	if cols == 0 {
		return 0, 0, fmt.Errorf("no columns, %w", ErrInvalidDim)
	}
	for i, row := range x {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("at row %d expected %d columns but got %d, %w", i, cols, len(row), ErrDimensionMismatch)
		}
	}
	return rows, cols, nil
}

func (m *Dense[T]) Rows() int {
	return m.rows
}

func (m *Dense[T]) Cols() int {
	return m.cols
}

// Dims returns the number of rows and columns. It also satisfies the gonum
// mat.Matrix interface.
func (m *Dense[T]) Dims() (int, int) {
	return m.rows, m.cols
}

// Size is the number of cells in the matrix
func (m *Dense[T]) Size() int {
	return len(m.data)
}

// CheckRow returns ErrIndexOutOfRange if i is not a valid row index
func (m *Dense[T]) CheckRow(i int) error {
	if i < 0 || i >= m.rows {
		return fmt.Errorf("row %d not in [0, %d), %w", i, m.rows, ErrIndexOutOfRange)
	}
	return nil
}

// CheckCol returns ErrIndexOutOfRange if j is not a valid column index
func (m *Dense[T]) CheckCol(j int) error {
	if j < 0 || j >= m.cols {
		return fmt.Errorf("column %d not in [0, %d), %w", j, m.cols, ErrIndexOutOfRange)
	}
	return nil
}

func (m *Dense[T]) checkCell(i, j int) error {
	if err := m.CheckRow(i); err != nil {
		return err
	}
	return m.CheckCol(j)
}

// Get retrieves a single value in the matrix at a specific row and column
func (m *Dense[T]) Get(i, j int) (T, error) {
	if err := m.checkCell(i, j); err != nil {
		var zero T
		return zero, err
	}
	return m.data[i*m.cols+j], nil
}

// Set assigns a single value in the matrix at a specific row and column
func (m *Dense[T]) Set(i, j int, v T) error {
	if err := m.checkCell(i, j); err != nil {
		return err
	}
	m.data[i*m.cols+j] = v
	return nil
}

// Row returns a copy of the specified row
func (m *Dense[T]) Row(i int) ([]T, error) {
	view, err := m.RowView(i)
	if err != nil {
		return nil, err
	}
	res := make([]T, m.cols)
	copy(res, view)
	return res, nil
}

// RowView returns a slice view of the specified row. Writes to the returned
// slice are writes to the matrix.
func (m *Dense[T]) RowView(i int) ([]T, error) {
	if err := m.CheckRow(i); err != nil {
		return nil, err
	}
	start := i * m.cols
	return m.data[start : start+m.cols : start+m.cols], nil
}

// SetRow replaces every value of row i with a copy of values
func (m *Dense[T]) SetRow(i int, values []T) error {
	if err := m.CheckRow(i); err != nil {
		return err
	}
	if len(values) != m.cols {
		return fmt.Errorf("row of length %d into matrix with %d columns, %w", len(values), m.cols, ErrDimensionMismatch)
	}
	copy(m.data[i*m.cols:(i+1)*m.cols], values)
	return nil
}

// Col returns a copy of the specified column
func (m *Dense[T]) Col(j int) ([]T, error) {
	if err := m.CheckCol(j); err != nil {
		return nil, err
	}
	res := make([]T, 0, m.rows)
	for i := 0; i < m.rows; i++ {
		res = append(res, m.data[i*m.cols+j])
	}
	return res, nil
}

// RawData returns the row major backing slice of the matrix. The slice is
// shared with the matrix.
func (m *Dense[T]) RawData() []T {
	return m.data
}

func (m *Dense[T]) Copy() *Dense[T] {
	data := make([]T, len(m.data))
	copy(data, m.data)
	return &Dense[T]{
		data: data,
		rows: m.rows,
		cols: m.cols,
	}
}

// Flatten returns a row major copy of every cell
func (m *Dense[T]) Flatten() []T {
	res := make([]T, len(m.data))
	copy(res, m.data)
	return res
}

func (m *Dense[T]) ToSlice() [][]T {
	res := make([][]T, m.rows)
	for i := 0; i < m.rows; i++ {
		res[i] = make([]T, m.cols)
		copy(res[i], m.data[i*m.cols:(i+1)*m.cols])
	}
	return res
}

// Transpose returns a new cols by rows matrix
func (m *Dense[T]) Transpose() *Dense[T] {
	data := make([]T, len(m.data))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return &Dense[T]{
		data: data,
		rows: m.cols,
		cols: m.rows,
	}
}
