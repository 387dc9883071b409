// Package tensor provides the minimal n-dimensional array runtime the
// percentile engine is built on: typed row-major storage, static shape
// descriptors with dynamic dimensions, transpose and reshape.
package tensor

import (
	"fmt"
	"strings"
)

// DType identifies the element type of an Array.
type DType int

const (
	InvalidDType DType = iota
	Int32
	Int64
	Float32
	Float64
)

// String returns the canonical lowercase name of the dtype.
func (d DType) String() string {
	switch d {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// IsInteger reports whether values of this dtype are stored as int64.
func (d DType) IsInteger() bool {
	return d == Int32 || d == Int64
}

// IsFloat reports whether values of this dtype are stored as float64.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// ParseDType converts a dtype name to DType.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int32":
		return Int32, nil
	case "int64", "int":
		return Int64, nil
	case "float32":
		return Float32, nil
	case "float64", "float", "":
		return Float64, nil
	default:
		return InvalidDType, fmt.Errorf("unknown dtype %q", s)
	}
}
