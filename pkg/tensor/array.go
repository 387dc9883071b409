package tensor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrShapeMismatch is returned when data length or a declared static shape
// does not agree with an array's dimensions.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrOverflow is returned when a value does not fit the array's dtype.
var ErrOverflow = errors.New("value out of range for dtype")

// Array is an immutable, row-major n-dimensional array. Integer dtypes are
// stored as int64 and floating dtypes as float64; Float32 values are
// rounded to float32 precision on construction.
type Array struct {
	dtype  DType
	dims   []int
	static Shape
	ints   []int64
	floats []float64
}

// NewFloat builds a floating array of the given dtype. data is copied.
func NewFloat(dtype DType, data []float64, dims ...int) (*Array, error) {
	if !dtype.IsFloat() {
		return nil, fmt.Errorf("dtype %s is not a floating dtype", dtype)
	}
	if err := checkLen(len(data), dims); err != nil {
		return nil, err
	}
	vals := append([]float64{}, data...)
	if dtype == Float32 {
		roundFloat32(vals)
	}
	return newFloat(dtype, vals, dims), nil
}

// NewInt builds an integer array of the given dtype. data is copied.
func NewInt(dtype DType, data []int64, dims ...int) (*Array, error) {
	if !dtype.IsInteger() {
		return nil, fmt.Errorf("dtype %s is not an integer dtype", dtype)
	}
	if err := checkLen(len(data), dims); err != nil {
		return nil, err
	}
	if dtype == Int32 {
		for i, v := range data {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: data[%d] = %d does not fit int32", ErrOverflow, i, v)
			}
		}
	}
	return newInt(dtype, append([]int64{}, data...), dims), nil
}

// FromFloat64s builds a Float64 array. With no dims the data is a vector.
func FromFloat64s(data []float64, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	return NewFloat(Float64, data, dims...)
}

// FromFloat32s builds a Float32 array. With no dims the data is a vector.
func FromFloat32s(data []float32, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	vals := make([]float64, len(data))
	for i, v := range data {
		vals[i] = float64(v)
	}
	return NewFloat(Float32, vals, dims...)
}

// FromInt64s builds an Int64 array. With no dims the data is a vector.
func FromInt64s(data []int64, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	return NewInt(Int64, data, dims...)
}

// FromInt32s builds an Int32 array. With no dims the data is a vector.
func FromInt32s(data []int32, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	vals := make([]int64, len(data))
	for i, v := range data {
		vals[i] = int64(v)
	}
	return NewInt(Int32, vals, dims...)
}

// Scalar returns a rank-0 Float64 array.
func Scalar(v float64) *Array {
	return newFloat(Float64, []float64{v}, nil)
}

// Vector returns a rank-1 Float64 array.
func Vector(vs ...float64) *Array {
	return newFloat(Float64, append([]float64{}, vs...), []int{len(vs)})
}

// Linspace returns num evenly spaced values over [start, stop].
func Linspace(start, stop float64, num int, dtype DType) (*Array, error) {
	if num < 0 {
		return nil, fmt.Errorf("linspace: negative count %d", num)
	}
	vals := make([]float64, num)
	switch num {
	case 0:
	case 1:
		vals[0] = start
	default:
		floats.Span(vals, start, stop)
	}
	if dtype.IsInteger() {
		ints := make([]int64, num)
		for i, v := range vals {
			ints[i] = int64(v)
		}
		return NewInt(dtype, ints, num)
	}
	if dtype == Float32 {
		roundFloat32(vals)
	}
	return newFloat(dtype, vals, []int{num}), nil
}

func newFloat(dtype DType, vals []float64, dims []int) *Array {
	d := append([]int{}, dims...)
	return &Array{dtype: dtype, dims: d, static: MakeShape(d...), floats: vals}
}

func newInt(dtype DType, vals []int64, dims []int) *Array {
	d := append([]int{}, dims...)
	return &Array{dtype: dtype, dims: d, static: MakeShape(d...), ints: vals}
}

func checkLen(n int, dims []int) error {
	for _, d := range dims {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
	}
	if want := NumElements(dims); want != n {
		return fmt.Errorf("%w: %d values for dims %v", ErrShapeMismatch, n, dims)
	}
	return nil
}

func roundFloat32(vals []float64) {
	for i, v := range vals {
		vals[i] = float64(float32(v))
	}
}

// WithStaticShape returns a view of a that advertises static instead of its
// concrete dims, hiding sizes (or the whole rank) until execution time.
func WithStaticShape(a *Array, static Shape) (*Array, error) {
	if !static.Compatible(a.dims) {
		return nil, fmt.Errorf("%w: static shape %s incompatible with dims %v", ErrShapeMismatch, static, a.dims)
	}
	view := *a
	view.static = Shape{dims: static.Dims(), rankKnown: static.rankKnown}
	return &view, nil
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Rank returns the concrete rank.
func (a *Array) Rank() int { return len(a.dims) }

// Dims returns a copy of the concrete dims.
func (a *Array) Dims() []int { return append([]int{}, a.dims...) }

// Size returns the number of elements.
func (a *Array) Size() int { return NumElements(a.dims) }

// StaticShape returns the shape known before execution.
func (a *Array) StaticShape() Shape { return a.static }

// Float64Data returns the backing floating storage. Callers must not modify
// it. It is nil for integer arrays.
func (a *Array) Float64Data() []float64 { return a.floats }

// Int64Data returns the backing integer storage. Callers must not modify it.
// It is nil for floating arrays.
func (a *Array) Int64Data() []int64 { return a.ints }

// Float64s returns a copy of the elements converted to float64.
func (a *Array) Float64s() []float64 {
	if a.dtype.IsFloat() {
		return append([]float64{}, a.floats...)
	}
	out := make([]float64, len(a.ints))
	for i, v := range a.ints {
		out[i] = float64(v)
	}
	return out
}

// Flat returns element i in row-major order as float64.
func (a *Array) Flat(i int) float64 {
	if a.dtype.IsFloat() {
		return a.floats[i]
	}
	return float64(a.ints[i])
}

// At returns the element at the given multi-index as float64.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.dims) {
		panic(fmt.Sprintf("tensor: At got %d indices for rank %d", len(idx), len(a.dims)))
	}
	off := 0
	st := strides(a.dims)
	for i, v := range idx {
		if v < 0 || v >= a.dims[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for axis %d of size %d", v, i, a.dims[i]))
		}
		off += v * st[i]
	}
	return a.Flat(off)
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, dims=%v)", a.dtype, a.dims)
}
