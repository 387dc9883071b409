package quantile

import (
	"go.uber.org/zap"

	"github.com/panbanda/pctl/internal/workpool"
)

// Option configures a Plan.
type Option func(*settings)

type settings struct {
	axes          []int
	interpolation Interpolation
	interpName    string
	keepDims      bool
	validateArgs  bool
	workers       int
	chunkRows     int
	sortThreshold int
	logger        *zap.Logger
	onProgress    workpool.ProgressFunc
}

func defaultSettings() settings {
	return settings{
		interpolation: Nearest,
		sortThreshold: DefaultSortThreshold,
		logger:        zap.NewNop(),
	}
}

// WithAxis sets the reduction axes. Negative values count from the end.
// No axes (the default) reduces over every axis.
func WithAxis(axes ...int) Option {
	return func(s *settings) {
		s.axes = append([]int{}, axes...)
	}
}

// WithInterpolation sets the interpolation policy. Defaults to Nearest.
func WithInterpolation(m Interpolation) Option {
	return func(s *settings) {
		s.interpolation = m
		s.interpName = ""
	}
}

// WithInterpolationName sets the policy by name. Unknown names make NewPlan
// fail with ErrConfig.
func WithInterpolationName(name string) Option {
	return func(s *settings) {
		s.interpName = name
	}
}

// WithKeepDims retains reduced axes as size-1 dimensions.
func WithKeepDims(keep bool) Option {
	return func(s *settings) {
		s.keepDims = keep
	}
}

// WithValidateArgs enables range and rank checks that can only be made
// once values and dynamic sizes are known.
func WithValidateArgs(validate bool) Option {
	return func(s *settings) {
		s.validateArgs = validate
	}
}

// WithWorkers bounds the number of rows processed concurrently. <= 0 uses
// 2x NumCPU.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

// WithChunkRows sets how many rows each worker task processes.
func WithChunkRows(n int) Option {
	return func(s *settings) {
		s.chunkRows = n
	}
}

// WithSortThreshold sets how many distinct order statistics a row may need
// before it is fully sorted rather than partially selected.
func WithSortThreshold(n int) Option {
	return func(s *settings) {
		s.sortThreshold = n
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress registers a callback receiving the number of rows finished.
func WithProgress(fn func(rows int)) Option {
	return func(s *settings) {
		s.onProgress = fn
	}
}
