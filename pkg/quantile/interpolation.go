package quantile

import (
	"fmt"
	"math"
	"strings"
)

// Interpolation selects how a fractional rank resolves to a value.
type Interpolation int

const (
	// Nearest picks the order statistic at the rank rounded half to even.
	Nearest Interpolation = iota
	// Lower picks the order statistic at floor(rank).
	Lower
	// Higher picks the order statistic at ceil(rank).
	Higher
	// Midpoint interpolates linearly between floor(rank) and ceil(rank).
	Midpoint
)

// Interpolations lists the recognized policies.
var Interpolations = []Interpolation{Lower, Higher, Nearest, Midpoint}

func (m Interpolation) String() string {
	switch m {
	case Lower:
		return "lower"
	case Higher:
		return "higher"
	case Nearest:
		return "nearest"
	case Midpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(m))
	}
}

// ParseInterpolation converts a policy name. "linear" is accepted as an
// alias of "midpoint".
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lower":
		return Lower, nil
	case "higher":
		return Higher, nil
	case "nearest":
		return Nearest, nil
	case "midpoint", "linear":
		return Midpoint, nil
	default:
		return 0, fmt.Errorf("%w: interpolation %q not in [lower, higher, nearest, midpoint]", ErrConfig, s)
	}
}

func (m Interpolation) valid() bool {
	return m >= Nearest && m <= Midpoint
}

// selectsElement reports whether the policy always returns an existing
// element, so integer inputs keep their dtype.
func (m Interpolation) selectsElement() bool {
	return m != Midpoint
}

// pick is the resolved position of one quantile level within a sorted
// slice: the value is s[lo] + frac*(s[hi]-s[lo]), or s[lo] when lo == hi.
type pick struct {
	lo, hi int
	frac   float64
}

// fractionalRank returns (n-1)*q/100 in float64. float32 cannot represent
// every integer near 3e7, so the element width of the input never leaks
// into this computation.
func fractionalRank(n int, q float64) float64 {
	return float64(n-1) * q / 100
}

// resolve maps a fractional rank to order-statistic indices for the policy.
func (m Interpolation) resolve(p float64) (lo, hi int, frac float64) {
	switch m {
	case Lower:
		i := int(math.Floor(p))
		return i, i, 0
	case Higher:
		i := int(math.Ceil(p))
		return i, i, 0
	case Nearest:
		i := int(roundHalfEven(p))
		return i, i, 0
	default:
		f := math.Floor(p)
		c := math.Ceil(p)
		return int(f), int(c), p - f
	}
}

// roundHalfEven rounds x to the nearest integer, choosing the even
// neighbour when x is exactly half-way.
func roundHalfEven(x float64) float64 {
	f := math.Floor(x)
	switch d := x - f; {
	case d < 0.5:
		return f
	case d > 0.5:
		return f + 1
	case math.Mod(f, 2) == 0:
		return f
	default:
		return f + 1
	}
}
