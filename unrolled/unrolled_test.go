package unrolled

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func checkPanic(t *testing.T, err error) {
	r := recover()
	if r == nil {
		return
	}
	if err != nil {
		rErr, ok := r.(error)
		assert.True(t, ok)
		assert.EqualError(t, rErr, err.Error())
		return
	}

	assert.Nil(t, r)
}

func TestDot(t *testing.T) {
	testData := map[string]struct {
		a        []int32
		b        []int32
		err      error
		expected float64
	}{
		"dot length mismatch": {
			a:   []int32{1, 2, 3},
			b:   []int32{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"dot empty": {
			a:        []int32{},
			b:        []int32{},
			expected: 0,
		},
		"dot tail only": {
			a:        []int32{1, 2, 3},
			b:        []int32{3, 2, 1},
			expected: 10,
		},
		"dot one batch": {
			a:        []int32{1, 2, 3, 4},
			b:        []int32{4, 3, 2, 1},
			expected: 20,
		},
		"dot batch and tail": {
			a:        []int32{1, 2, 3, 4, 5},
			b:        []int32{1, 2, 3, 4, 5},
			expected: 55,
		},
		"dot promotes past int32 range": {
			a:        []int32{math.MaxInt32, math.MaxInt32},
			b:        []int32{2, 2},
			expected: 4 * float64(math.MaxInt32),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := Dot(td.a, td.b)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestDotMixedTypes(t *testing.T) {
	a := []uint8{1, 2, 3, 4, 5}
	b := []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	assert.Equal(t, 7.5, Dot(a, b))
}

func TestDotMatchesGonum(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	a := make([]float64, 103)
	b := make([]float64, 103)
	a32 := make([]float32, 103)
	b32 := make([]float32, 103)
	for i := range a {
		a32[i] = float32(r.NormFloat64())
		b32[i] = float32(r.NormFloat64())
		a[i] = float64(a32[i])
		b[i] = float64(b32[i])
	}
	assert.InDelta(t, floats.Dot(a, b), Dot(a32, b32), 1e-9)
	assert.InDelta(t, floats.Dot(a, b), Dot(a, b), 1e-12)
}

func TestDotDiff(t *testing.T) {
	testData := map[string]struct {
		a        []int
		b        []int
		c        []int
		err      error
		expected float64
	}{
		"dotdiff length mismatch b": {
			a:   []int{1, 2, 3},
			b:   []int{1, 2},
			c:   []int{1, 2, 3},
			err: ErrSliceLengthMismatch,
		},
		"dotdiff length mismatch c": {
			a:   []int{1, 2, 3},
			b:   []int{1, 2, 3},
			c:   []int{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"dotdiff identical rows": {
			a:        []int{1, 2, 3, 4, 5},
			b:        []int{1, 2, 3, 4, 5},
			c:        []int{1, 2, 3, 4, 5},
			expected: 0,
		},
		"dotdiff ones subtracted": {
			a:        []int{1, 2, 3, 4, 5},
			b:        []int{1, 2, 3, 4, 5},
			c:        []int{1, 1, 1, 1, 1},
			expected: 40,
		},
		"dotdiff negative": {
			a:        []int{2, 2},
			b:        []int{0, 0},
			c:        []int{1, 3},
			expected: -8,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := DotDiff(td.a, td.b, td.c)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestDotDiffUnsignedDoesNotWrap(t *testing.T) {
	a := []uint8{1, 1}
	b := []uint8{0, 0}
	c := []uint8{1, 2}
	assert.Equal(t, -3.0, DotDiff(a, b, c))
}

func TestAdd(t *testing.T) {
	testData := map[string]struct {
		dst      []float64
		s        []float64
		err      error
		expected []float64
	}{
		"add length mismatch": {
			dst: []float64{1, 2, 3},
			s:   []float64{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"add tail only": {
			dst:      []float64{1, 2, 3},
			s:        []float64{1, 2, 3},
			expected: []float64{2, 4, 6},
		},
		"add valid": {
			dst:      []float64{1, 2, 3, 4},
			s:        []float64{4, 3, 2, 1},
			expected: []float64{5, 5, 5, 5},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := Add(td.dst, td.s)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestAddInt(t *testing.T) {
	dst := []int16{1, 2, 3, 4, 5, 6}
	Add(dst, []int16{1, 1, 1, 1, 1, 1})
	assert.Equal(t, []int16{2, 3, 4, 5, 6, 7}, dst)
}

func TestAddConstAndScale(t *testing.T) {
	ints := []int{1, 2, 3, 4, 5}
	AddConst(1, ints)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, ints)
	Scale(3, ints)
	assert.Equal(t, []int{6, 9, 12, 15, 18}, ints)

	fl := []float64{1, 2, 3, 4, 5}
	Scale(2.5, fl)
	assert.Equal(t, []float64{2.5, 5, 7.5, 10, 12.5}, fl)
	AddConst(-0.5, fl)
	assert.Equal(t, []float64{2, 4.5, 7, 9.5, 12}, fl)

	f32 := []float32{1, 2, 3, 4, 5}
	Scale(2.5, f32)
	assert.Equal(t, []float32{2.5, 5, 7.5, 10, 12.5}, f32)
}

func TestSubTo(t *testing.T) {
	testData := map[string]struct {
		dst      []float64
		s        []int
		t        []int
		err      error
		expected []float64
	}{
		"subto length mismatch": {
			s:   []int{1, 2, 3},
			t:   []int{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"subto output length mismatch": {
			dst: []float64{0, 0},
			s:   []int{1, 2, 3},
			t:   []int{1, 2, 3},
			err: ErrOutputSliceLengthMismatch,
		},
		"subto nil dst": {
			s:        []int{5, 5, 5, 5, 5},
			t:        []int{1, 2, 3, 4, 5},
			expected: []float64{4, 3, 2, 1, 0},
		},
		"subto existing dst": {
			dst:      []float64{9, 9, 9},
			s:        []int{1, 2, 3},
			t:        []int{3, 2, 1},
			expected: []float64{-2, 0, 2},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := SubTo(td.dst, td.s, td.t)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSubToFloat64(t *testing.T) {
	res := SubTo(nil, []float64{1, 2, 3, 4, 5}, []float64{1, 1, 1, 1, 1})
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, res)
}

func TestSum(t *testing.T) {
	assert.Equal(t, 15.0, Sum([]int8{1, 2, 3, 4, 5}))
	assert.Equal(t, 1270.0, Sum([]int8{127, 127, 127, 127, 127, 127, 127, 127, 127, 127}))
	assert.Equal(t, 15.0, Sum([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 0.0, Sum([]float32{}))
}

func TestSumSquares(t *testing.T) {
	assert.Equal(t, 55.0, SumSquares([]int{1, 2, 3, 4, 5}))
	assert.Equal(t, 55.0, SumSquares([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 2*127.0*127.0, SumSquares([]int8{127, -127}))
}

func TestMax(t *testing.T) {
	testData := map[string]struct {
		s        []int
		err      error
		expected int
	}{
		"max empty": {
			s:   []int{},
			err: ErrEmptySlice,
		},
		"max zeros": {
			s:        []int{0, 0, 0},
			expected: 0,
		},
		"max negatives": {
			s:        []int{-5, -2, -9},
			expected: -2,
		},
		"max last": {
			s:        []int{1, 2, 9},
			expected: 9,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := Max(td.s)
			assert.Equal(t, td.expected, res)
		})
	}

	assert.Equal(t, 9.0, Max([]float64{0, 9, 1}))
	assert.Equal(t, float32(9), Max([]float32{0, 9, 1}))
}

func TestMaxSkipsNaN(t *testing.T) {
	nan := math.NaN()
	nan32 := float32(math.NaN())

	assert.Equal(t, 1.0, Max([]float64{nan, 1}))
	assert.Equal(t, float32(1), Max([]float32{nan32, 1}))
	assert.Equal(t, 3.0, Max([]float64{2, nan, 3, nan}))
	assert.Equal(t, float32(3), Max([]float32{2, nan32, 3, nan32}))
	assert.Equal(t, float32(-4), Max([]float32{nan32, nan32, -4, -5}))

	assert.True(t, math.IsNaN(Max([]float64{nan, nan})))
	assert.True(t, math.IsNaN(float64(Max([]float32{nan32, nan32}))))
}

func BenchmarkDotInt(b *testing.B) {
	n := 64
	x := make([]int, n)
	y := make([]int, n)
	for i := range n {
		x[i] = i
		y[i] = n - i
	}

	var res float64
	for b.Loop() {
		res = Dot(x, y)
	}
	_ = res
}

func BenchmarkDotDiff(b *testing.B) {
	n := 64
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := range n {
		x[i] = float64(i)
		y[i] = float64(n - i)
		z[i] = 1
	}

	var res float64
	for b.Loop() {
		res = DotDiff(x, y, z)
	}
	_ = res
}
