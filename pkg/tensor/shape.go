package tensor

import (
	"fmt"
	"strings"
)

// DynamicDim marks an axis whose size is only known at execution time.
const DynamicDim = -1

// Shape is a static shape descriptor. Each axis is either a known size or
// DynamicDim; the rank itself may be unknown.
type Shape struct {
	dims      []int
	rankKnown bool
}

// MakeShape returns a shape of known rank. Use DynamicDim for axes whose
// size is deferred.
func MakeShape(dims ...int) Shape {
	return Shape{dims: append([]int{}, dims...), rankKnown: true}
}

// DynamicShape returns a shape of the given rank with every axis dynamic.
func DynamicShape(rank int) Shape {
	dims := make([]int, rank)
	for i := range dims {
		dims[i] = DynamicDim
	}
	return Shape{dims: dims, rankKnown: true}
}

// UnknownShape returns a shape whose rank is not known statically.
func UnknownShape() Shape {
	return Shape{}
}

// RankKnown reports whether the rank is known statically.
func (s Shape) RankKnown() bool {
	return s.rankKnown
}

// Rank returns the static rank, or -1 if it is unknown.
func (s Shape) Rank() int {
	if !s.rankKnown {
		return -1
	}
	return len(s.dims)
}

// Dim returns the static size of axis i, which may be DynamicDim.
func (s Shape) Dim(i int) int {
	return s.dims[i]
}

// Dims returns a copy of the per-axis sizes.
func (s Shape) Dims() []int {
	if !s.rankKnown {
		return nil
	}
	return append([]int{}, s.dims...)
}

// IsFullyKnown reports whether the rank and every axis size are static.
func (s Shape) IsFullyKnown() bool {
	if !s.rankKnown {
		return false
	}
	for _, d := range s.dims {
		if d == DynamicDim {
			return false
		}
	}
	return true
}

// Compatible reports whether concrete dims satisfy this static shape.
func (s Shape) Compatible(dims []int) bool {
	if !s.rankKnown {
		return true
	}
	if len(dims) != len(s.dims) {
		return false
	}
	for i, d := range s.dims {
		if d != DynamicDim && d != dims[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two static shapes are identical.
func (s Shape) Equal(other Shape) bool {
	if s.rankKnown != other.rankKnown || len(s.dims) != len(other.dims) {
		return false
	}
	for i := range s.dims {
		if s.dims[i] != other.dims[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	if !s.rankKnown {
		return "<unknown>"
	}
	parts := make([]string, len(s.dims))
	for i, d := range s.dims {
		if d == DynamicDim {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(d)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// NumElements returns the product of dims. It returns DynamicDim if any
// axis is dynamic.
func NumElements(dims []int) int {
	n := 1
	for _, d := range dims {
		if d == DynamicDim {
			return DynamicDim
		}
		n *= d
	}
	return n
}

// strides returns row-major strides for dims.
func strides(dims []int) []int {
	st := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= dims[i]
	}
	return st
}
