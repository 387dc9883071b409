package tensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDType(t *testing.T) {
	tests := []struct {
		in   string
		want DType
	}{
		{"int32", Int32},
		{"INT64", Int64},
		{"int", Int64},
		{"float32", Float32},
		{"float64", Float64},
		{"", Float64},
	}
	for _, tt := range tests {
		got, err := ParseDType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDType("complex128")
	assert.Error(t, err)
}

func TestShape(t *testing.T) {
	s := MakeShape(2, DynamicDim, 4)
	assert.True(t, s.RankKnown())
	assert.Equal(t, 3, s.Rank())
	assert.False(t, s.IsFullyKnown())
	assert.True(t, s.Compatible([]int{2, 7, 4}))
	assert.False(t, s.Compatible([]int{3, 7, 4}))
	assert.False(t, s.Compatible([]int{2, 7}))
	assert.Equal(t, "(2, ?, 4)", s.String())

	u := UnknownShape()
	assert.Equal(t, -1, u.Rank())
	assert.True(t, u.Compatible([]int{1, 2, 3, 4}))
	assert.Equal(t, "<unknown>", u.String())

	assert.Equal(t, DynamicDim, NumElements([]int{2, DynamicDim}))
	assert.Equal(t, 1, NumElements(nil))
	assert.True(t, DynamicShape(2).Equal(MakeShape(DynamicDim, DynamicDim)))
}

func TestNewArrayLengthMismatch(t *testing.T) {
	_, err := FromFloat64s([]float64{1, 2, 3}, 2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestFloat32Rounding(t *testing.T) {
	a, err := FromFloat64s([]float64{0.1})
	require.NoError(t, err)
	b, err := NewFloat(Float32, []float64{0.1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.1, a.Flat(0))
	assert.Equal(t, float64(float32(0.1)), b.Flat(0))
}

func TestInt32RejectsOverflow(t *testing.T) {
	_, err := NewInt(Int32, []int64{1, 3000000000}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = NewInt(Int32, []int64{math.MinInt32 - 1}, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	a, err := NewInt(Int32, []int64{math.MinInt32, math.MaxInt32}, 2)
	require.NoError(t, err)
	assert.Equal(t, float64(math.MaxInt32), a.Flat(1))
}

func TestAt(t *testing.T) {
	a, err := FromInt64s([]int64{0, 1, 2, 3, 4, 5}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, a.At(1, 2))
	assert.Equal(t, 3.0, a.At(1, 0))
	assert.Panics(t, func() { a.At(2, 0) })
	assert.Panics(t, func() { a.At(0) })
}

func TestTranspose(t *testing.T) {
	// 2x3x4 with value = flat index
	data := make([]float64, 24)
	for i := range data {
		data[i] = float64(i)
	}
	a, err := FromFloat64s(data, 2, 3, 4)
	require.NoError(t, err)

	perm := []int{2, 0, 1}
	tr, err := Transpose(a, perm)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 3}, tr.Dims())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				assert.Equal(t, a.At(i, j, k), tr.At(k, i, j))
			}
		}
	}
}

func TestTransposeIdentityDoesNotCopy(t *testing.T) {
	a, err := FromFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	tr, err := Transpose(a, []int{0, 1})
	require.NoError(t, err)
	assert.Same(t, a, tr)
}

func TestTransposePermutesStaticShape(t *testing.T) {
	a, err := FromInt64s([]int64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	a, err = WithStaticShape(a, MakeShape(DynamicDim, 3))
	require.NoError(t, err)
	tr, err := Transpose(a, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "(3, ?)", tr.StaticShape().String())
	assert.Equal(t, Int64, tr.DType())
	assert.Equal(t, 4.0, tr.At(0, 1))
}

func TestTransposeInvalid(t *testing.T) {
	a, err := FromFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	_, err = Transpose(a, []int{0, 0})
	assert.Error(t, err)
	_, err = Transpose(a, []int{0})
	assert.Error(t, err)
}

func TestReshape(t *testing.T) {
	a, err := FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	r, err := Reshape(a, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, r.Dims())
	assert.Equal(t, 4.0, r.At(1, 1))

	_, err = Reshape(a, 4, 2)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestWithStaticShape(t *testing.T) {
	a, err := FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)

	v, err := WithStaticShape(a, UnknownShape())
	require.NoError(t, err)
	assert.False(t, v.StaticShape().RankKnown())
	assert.Equal(t, []int{2, 3}, v.Dims())
	assert.True(t, a.StaticShape().IsFullyKnown(), "original must be untouched")

	_, err = WithStaticShape(a, MakeShape(2, 4))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestLinspace(t *testing.T) {
	a, err := Linspace(0, 1, 5, Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, a.Float64s())

	one, err := Linspace(3, 9, 1, Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, one.Float64s())

	ints, err := Linspace(0, 10, 3, Int64)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 5, 10}, ints.Int64Data())

	_, err = Linspace(0, 1, -1, Float64)
	assert.Error(t, err)
}

func TestScalarAndVector(t *testing.T) {
	s := Scalar(3)
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, 3.0, s.At())

	v := Vector(1, 2)
	assert.Equal(t, []int{2}, v.Dims())
}
