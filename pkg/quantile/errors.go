package quantile

import "errors"

// Sentinel errors. Every error returned by this package wraps one of them.
var (
	// ErrShape reports a quantile argument of rank >= 2 or an input whose
	// rank is not statically known.
	ErrShape = errors.New("invalid shape")
	// ErrRange reports a quantile level outside [0, 100].
	ErrRange = errors.New("quantile level out of range")
	// ErrConfig reports an unrecognized interpolation policy.
	ErrConfig = errors.New("invalid configuration")
	// ErrAxis reports an out-of-range or duplicate axis.
	ErrAxis = errors.New("invalid axis")
	// ErrEmpty reports a reduction over zero elements.
	ErrEmpty = errors.New("empty reduction")
	// ErrRuntime reports an unvalidated argument that made the computation
	// impossible, such as an order-statistic index out of bounds.
	ErrRuntime = errors.New("percentile runtime failure")
)
