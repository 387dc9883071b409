package quantile

import (
	"fmt"
	"slices"
)

// AxisSet is a sorted, deduplicated set of non-negative axis indices.
type AxisSet []int

// ResolveAxes normalizes axes against rank. Negative entries count from the
// end. An empty spec selects every axis.
func ResolveAxes(rank int, axes []int) (AxisSet, error) {
	if len(axes) == 0 {
		all := make(AxisSet, rank)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool, len(axes))
	out := make(AxisSet, 0, len(axes))
	for _, a := range axes {
		r := a
		if r < 0 {
			r += rank
		}
		if r < 0 || r >= rank {
			return nil, fmt.Errorf("%w: axis %d is out of range for rank %d", ErrAxis, a, rank)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: duplicate axis %d (given as %d)", ErrAxis, r, a)
		}
		seen[r] = true
		out = append(out, r)
	}
	slices.Sort(out)
	return out, nil
}

// Contains reports whether axis a is in the set.
func (s AxisSet) Contains(a int) bool {
	_, ok := slices.BinarySearch(s, a)
	return ok
}

// Complement returns the axes of [0, rank) not in the set, in order.
func (s AxisSet) Complement(rank int) []int {
	out := make([]int, 0, rank-len(s))
	for i := 0; i < rank; i++ {
		if !s.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}
