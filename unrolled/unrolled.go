// unrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
//
// Kernels are generic over integer and floating point element types. Anything
// producing a statistic (dot products, sums, differences) accumulates in float64
// so that narrow integer types cannot overflow. float64 inputs are routed to
// gonum's assembly backed floats package.
package unrolled

import (
	"errors"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch       = errors.New("slices must have equal lengths")
	ErrOutputSliceLengthMismatch = errors.New("output slice length not the same as input")
	ErrEmptySlice                = errors.New("slice must not be empty")
)

type Number interface {
	constraints.Integer | constraints.Float
}

func asFloat64[T Number](s []T) ([]float64, bool) {
	f, ok := any(s).([]float64)
	return f, ok
}

// Dot returns the sum of a[i]*b[i] computed in float64
func Dot[A, B Number](a []A, b []B) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}
	if af, ok := asFloat64(a); ok {
		if bf, ok := asFloat64(b); ok {
			return floats.Dot(af, bf)
		}
	}

	var sum float64
	n := len(a) - len(a)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := float64(aTmp[0]) * float64(bTmp[0])
		s1 := float64(aTmp[1]) * float64(bTmp[1])
		s2 := float64(aTmp[2]) * float64(bTmp[2])
		s3 := float64(aTmp[3]) * float64(bTmp[3])
		sum += s0 + s1 + s2 + s3
	}
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// DotDiff returns the sum of a[i]*(b[i]-c[i]) in a single pass without
// materializing b-c.
func DotDiff[T Number](a, b, c []T) float64 {
	if len(a) != len(b) || len(a) != len(c) {
		panic(ErrSliceLengthMismatch)
	}

	var sum float64
	n := len(a) - len(a)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		cTmp := c[i : i+UnrollBatch : i+UnrollBatch]
		s0 := float64(aTmp[0]) * (float64(bTmp[0]) - float64(cTmp[0]))
		s1 := float64(aTmp[1]) * (float64(bTmp[1]) - float64(cTmp[1]))
		s2 := float64(aTmp[2]) * (float64(bTmp[2]) - float64(cTmp[2]))
		s3 := float64(aTmp[3]) * (float64(bTmp[3]) - float64(cTmp[3]))
		sum += s0 + s1 + s2 + s3
	}
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * (float64(b[i]) - float64(c[i]))
	}
	return sum
}

// Add adds s into dst element by element and returns dst
func Add[T Number](dst, s []T) []T {
	if len(dst) != len(s) {
		panic(ErrSliceLengthMismatch)
	}
	if df, ok := asFloat64(dst); ok {
		sf, _ := asFloat64(s)
		floats.Add(df, sf)
		return dst
	}

	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] += sTmp[0]
		dstTmp[1] += sTmp[1]
		dstTmp[2] += sTmp[2]
		dstTmp[3] += sTmp[3]
	}
	for i := n; i < len(s); i++ {
		dst[i] += s[i]
	}
	return dst
}

// AddConst adds c to every element of dst
func AddConst[T Number](c T, dst []T) {
	if df, ok := asFloat64(dst); ok {
		floats.AddConst(float64(c), df)
		return
	}

	n := len(dst) - len(dst)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] += c
		dstTmp[1] += c
		dstTmp[2] += c
		dstTmp[3] += c
	}
	for i := n; i < len(dst); i++ {
		dst[i] += c
	}
}

// Scale multiplies every element of dst by c
func Scale[T Number](c T, dst []T) {
	if df, ok := asFloat64(dst); ok {
		floats.Scale(float64(c), df)
		return
	}

	n := len(dst) - len(dst)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] *= c
		dstTmp[1] *= c
		dstTmp[2] *= c
		dstTmp[3] *= c
	}
	for i := n; i < len(dst); i++ {
		dst[i] *= c
	}
}

// SubTo writes s-t into dst as float64. A nil dst is allocated.
func SubTo[T Number](dst []float64, s, t []T) []float64 {
	if len(s) != len(t) {
		panic(ErrSliceLengthMismatch)
	}

	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		panic(ErrOutputSliceLengthMismatch)
	}

	if sf, ok := asFloat64(s); ok {
		tf, _ := asFloat64(t)
		return floats.SubTo(dst, sf, tf)
	}

	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = float64(sTmp[0]) - float64(tTmp[0])
		dstTmp[1] = float64(sTmp[1]) - float64(tTmp[1])
		dstTmp[2] = float64(sTmp[2]) - float64(tTmp[2])
		dstTmp[3] = float64(sTmp[3]) - float64(tTmp[3])
	}
	for i := n; i < len(s); i++ {
		dst[i] = float64(s[i]) - float64(t[i])
	}
	return dst
}

// Sum returns the float64 sum of every element
func Sum[T Number](s []T) float64 {
	if sf, ok := asFloat64(s); ok {
		return floats.Sum(sf)
	}

	var sum float64
	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		sum += float64(sTmp[0]) + float64(sTmp[1]) + float64(sTmp[2]) + float64(sTmp[3])
	}
	for i := n; i < len(s); i++ {
		sum += float64(s[i])
	}
	return sum
}

// SumSquares returns the float64 sum of s[i]*s[i]
func SumSquares[T Number](s []T) float64 {
	return Dot(s, s)
}

// Max returns the largest element of s. NaN values are skipped, so NaN is
// only returned when every element is NaN.
func Max[T Number](s []T) T {
	if len(s) == 0 {
		panic(ErrEmptySlice)
	}
	if sf, ok := asFloat64(s); ok {
		return T(floats.Max(sf))
	}

	// v != v only holds for NaN
	start := 0
	for start < len(s) && s[start] != s[start] {
		start++
	}
	if start == len(s) {
		return s[0]
	}
	res := s[start]
	for _, v := range s[start+1:] {
		if v > res {
			res = v
		}
	}
	return res
}
