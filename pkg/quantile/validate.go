package quantile

import (
	"fmt"

	"github.com/panbanda/pctl/pkg/tensor"
)

// checkStaticLevels inspects what is known about q before execution. It
// reports whether the level values were range-checked already, which is
// only possible when q's shape is fully static.
func checkStaticLevels(q *tensor.Array, validate bool) (bool, error) {
	s := q.StaticShape()
	if s.RankKnown() && s.Rank() > 1 {
		return false, fmt.Errorf("%w: Expected ndims <= 1 for q, found rank %d", ErrShape, s.Rank())
	}
	if validate && s.IsFullyKnown() {
		return true, checkRange(q.Float64s())
	}
	return false, nil
}

// checkRuntimeRank rejects a q whose rank was hidden until execution.
func checkRuntimeRank(q *tensor.Array, validate bool) error {
	r := q.Rank()
	if r <= 1 {
		return nil
	}
	if validate {
		return fmt.Errorf("%w: q must have rank 0 or 1, got rank %d", ErrShape, r)
	}
	return fmt.Errorf("%w: cannot broadcast quantile levels of rank %d", ErrRuntime, r)
}

func checkRange(levels []float64) error {
	for i, v := range levels {
		if !(v >= 0 && v <= 100) {
			return fmt.Errorf("%w: q[%d] = %v is not in [0, 100]", ErrRange, i, v)
		}
	}
	return nil
}
