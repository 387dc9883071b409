package quantile

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// DefaultSortThreshold is the number of distinct order statistics above
// which a row is fully sorted instead of partially selected.
const DefaultSortThreshold = 8

// element is the storage type of a flattened row.
type element interface {
	~int64 | ~float64
}

// selection is the per-call plan shared by every row: the resolved pick of
// each level and the distinct ranks those picks need, ascending.
type selection struct {
	picks []pick
	ranks []int
	// fullSort is set when len(ranks) exceeds the sort threshold.
	fullSort bool
}

// newSelection resolves every level against a reduction extent of n.
// Levels whose indices fall outside [0, n) are reported as ErrRuntime.
func newSelection(levels []float64, n int, m Interpolation, sortThreshold int) (*selection, error) {
	sel := &selection{picks: make([]pick, len(levels))}
	need := make(map[int]struct{}, 2*len(levels))
	for i, q := range levels {
		p := fractionalRank(n, q)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: quantile level %v yields no rank", ErrRuntime, q)
		}
		lo, hi, frac := m.resolve(p)
		if lo < 0 || hi >= n {
			return nil, fmt.Errorf("%w: index [%d, %d] out of bounds for reduction of size %d (q=%v)", ErrRuntime, lo, hi, n, q)
		}
		sel.picks[i] = pick{lo: lo, hi: hi, frac: frac}
		need[lo] = struct{}{}
		need[hi] = struct{}{}
	}
	for k := range need {
		sel.ranks = append(sel.ranks, k)
	}
	slices.Sort(sel.ranks)
	if sortThreshold <= 0 {
		sortThreshold = DefaultSortThreshold
	}
	sel.fullSort = len(sel.ranks) > sortThreshold
	return sel, nil
}

// order rearranges scratch so that every needed rank holds its order
// statistic under cmp.Compare ordering.
func order[T element](scratch []T, sel *selection) {
	if sel.fullSort {
		slices.Sort(scratch)
		return
	}
	lo := 0
	for _, k := range sel.ranks {
		nthElement(scratch, lo, len(scratch)-1, k)
		lo = k + 1
	}
}

// nthElement partially orders s[lo..hi] so that s[k] is the element that
// would be there after sorting, everything before it is <= s[k] and
// everything after is >= s[k].
func nthElement[T element](s []T, lo, hi, k int) {
	for hi > lo {
		if hi-lo < 16 {
			insertionSort(s[lo : hi+1])
			return
		}

		mid := lo + (hi-lo)/2
		if cmp.Less(s[mid], s[lo]) {
			s[mid], s[lo] = s[lo], s[mid]
		}
		if cmp.Less(s[hi], s[lo]) {
			s[hi], s[lo] = s[lo], s[hi]
		}
		if cmp.Less(s[hi], s[mid]) {
			s[hi], s[mid] = s[mid], s[hi]
		}
		pivot := s[mid]

		i, j := lo, hi
		for i <= j {
			for cmp.Less(s[i], pivot) {
				i++
			}
			for cmp.Less(pivot, s[j]) {
				j--
			}
			if i <= j {
				s[i], s[j] = s[j], s[i]
				i++
				j--
			}
		}

		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return
		}
	}
}

func insertionSort[T element](s []T) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && cmp.Less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// interpolate returns the value of pk in an ordered scratch slice.
func interpolate[T element](scratch []T, pk pick) float64 {
	lo := float64(scratch[pk.lo])
	if pk.lo == pk.hi || pk.frac == 0 {
		return lo
	}
	return lo + pk.frac*(float64(scratch[pk.hi])-lo)
}

// reduceRows computes every level for rows [start, end) of data, a
// row-major (rows, n) buffer. Selected elements are written to selected
// (index-selecting policies) or interpolated values to interpolated
// (Midpoint); both are laid out [level][row] with stride rows.
func reduceRows[T element](data []T, n, rows, start, end int, sel *selection, m Interpolation, selected []T, interpolated []float64) {
	scratch := make([]T, n)
	for r := start; r < end; r++ {
		copy(scratch, data[r*n:(r+1)*n])
		order(scratch, sel)
		for l, pk := range sel.picks {
			if m.selectsElement() {
				selected[l*rows+r] = scratch[pk.lo]
			} else {
				interpolated[l*rows+r] = interpolate(scratch, pk)
			}
		}
	}
}
