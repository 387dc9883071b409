// Package quantile computes percentiles of n-dimensional arrays along a set
// of axes, with lower, higher, nearest and midpoint interpolation.
//
// A Plan separates the checks that static shapes allow (rank of q, axes,
// interpolation name) from those that need concrete sizes and values, which
// Run performs when WithValidateArgs is set.
package quantile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/panbanda/pctl/internal/workpool"
	"github.com/panbanda/pctl/pkg/tensor"
)

// Plan is a validated percentile computation ready to run.
type Plan struct {
	x, q *tensor.Array
	axes AxisSet
	cfg  settings

	levelsChecked bool
	outStatic     tensor.Shape
	outDType      tensor.DType
}

// NewPlan checks everything that is statically known about the arguments
// and returns a Plan. x must have a statically known rank; q must be a
// scalar or a vector of levels in [0, 100].
func NewPlan(x, q *tensor.Array, opts ...Option) (*Plan, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.interpName != "" {
		m, err := ParseInterpolation(cfg.interpName)
		if err != nil {
			return nil, err
		}
		cfg.interpolation = m
	}
	if !cfg.interpolation.valid() {
		return nil, fmt.Errorf("%w: unknown interpolation %s", ErrConfig, cfg.interpolation)
	}
	if x == nil || q == nil {
		return nil, fmt.Errorf("%w: nil argument", ErrShape)
	}

	xs := x.StaticShape()
	if !xs.RankKnown() {
		return nil, fmt.Errorf("%w: input rank must be known statically", ErrShape)
	}
	axes, err := ResolveAxes(xs.Rank(), cfg.axes)
	if err != nil {
		return nil, err
	}

	checked, err := checkStaticLevels(q, cfg.validateArgs)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		x:             x,
		q:             q,
		axes:          axes,
		cfg:           cfg,
		levelsChecked: checked,
		outDType:      outputDType(x.DType(), cfg.interpolation),
	}

	if qs := q.StaticShape(); qs.RankKnown() {
		vector := qs.Rank() == 1
		levels := 0
		if vector {
			levels = qs.Dim(0)
		}
		p.outStatic = tensor.MakeShape(reassembleDims(xs.Dims(), axes, cfg.keepDims, levels, vector)...)
	} else {
		p.outStatic = tensor.UnknownShape()
	}

	cfg.logger.Debug("percentile plan",
		zap.Stringer("input", xs),
		zap.Ints("axes", axes),
		zap.Stringer("interpolation", cfg.interpolation),
		zap.Bool("keepDims", cfg.keepDims),
		zap.Bool("validateArgs", cfg.validateArgs),
		zap.Stringer("output", p.outStatic))
	return p, nil
}

// OutputShape returns the static shape of the result. Axes whose size is
// only known at execution time are tensor.DynamicDim.
func (p *Plan) OutputShape() tensor.Shape {
	return p.outStatic
}

// OutputDType returns the dtype of the result.
func (p *Plan) OutputDType() tensor.DType {
	return p.outDType
}

// Axes returns the resolved reduction axes.
func (p *Plan) Axes() AxisSet {
	return append(AxisSet{}, p.axes...)
}

// Interpolation returns the policy the plan runs with.
func (p *Plan) Interpolation() Interpolation {
	return p.cfg.interpolation
}

// Run performs the deferred checks and computes the result.
func (p *Plan) Run(ctx context.Context) (*tensor.Array, error) {
	if err := checkRuntimeRank(p.q, p.cfg.validateArgs); err != nil {
		return nil, err
	}
	levels := p.q.Float64s()
	vector := p.q.Rank() == 1
	if p.cfg.validateArgs && !p.levelsChecked {
		if err := checkRange(levels); err != nil {
			return nil, err
		}
	}

	flat, err := Flatten(p.x, p.axes)
	if err != nil {
		return nil, err
	}
	if flat.N == 0 && flat.Rows > 0 {
		return nil, fmt.Errorf("%w: reduction axes %v of %v have no elements", ErrEmpty, []int(p.axes), p.x.Dims())
	}

	outDims := reassembleDims(p.x.Dims(), p.axes, p.cfg.keepDims, len(levels), vector)
	if len(levels)*flat.Rows == 0 {
		return p.build(nil, nil, outDims)
	}

	sel, err := newSelection(levels, flat.N, p.cfg.interpolation, p.cfg.sortThreshold)
	if err != nil {
		return nil, err
	}
	p.cfg.logger.Debug("percentile run",
		zap.Int("rows", flat.Rows),
		zap.Int("n", flat.N),
		zap.Int("levels", len(levels)),
		zap.Int("ranks", len(sel.ranks)),
		zap.Bool("fullSort", sel.fullSort))

	if flat.DType().IsInteger() {
		selected, interpolated, err := reduceAll(ctx, p, flat, flat.data.Int64Data(), sel)
		if err != nil {
			return nil, err
		}
		return p.build(selected, interpolated, outDims)
	}
	selected, interpolated, err := reduceAll(ctx, p, flat, flat.data.Float64Data(), sel)
	if err != nil {
		return nil, err
	}
	return p.buildFloat(selected, interpolated, outDims)
}

// Percentile builds a Plan for x and q and runs it.
func Percentile(ctx context.Context, x, q *tensor.Array, opts ...Option) (*tensor.Array, error) {
	p, err := NewPlan(x, q, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

func outputDType(in tensor.DType, m Interpolation) tensor.DType {
	switch {
	case m.selectsElement():
		return in
	case in == tensor.Float32:
		return tensor.Float32
	default:
		return tensor.Float64
	}
}

// reduceAll fans the rows of flat out over the worker pool.
func reduceAll[T element](ctx context.Context, p *Plan, flat *Flattened, data []T, sel *selection) ([]T, []float64, error) {
	m := p.cfg.interpolation
	size := len(sel.picks) * flat.Rows

	var selected []T
	var interpolated []float64
	if m.selectsElement() {
		selected = make([]T, size)
	} else {
		interpolated = make([]float64, size)
	}

	err := workpool.ForEachChunk(ctx, flat.Rows, workpool.Options{
		MaxWorkers: p.cfg.workers,
		ChunkSize:  p.cfg.chunkRows,
		OnProgress: p.cfg.onProgress,
	}, func(_ context.Context, start, end int) error {
		reduceRows(data, flat.N, flat.Rows, start, end, sel, m, selected, interpolated)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return selected, interpolated, nil
}

// build assembles the output for an integer input, or for an empty result.
func (p *Plan) build(selected []int64, interpolated []float64, dims []int) (*tensor.Array, error) {
	if p.outDType.IsFloat() {
		return p.buildFloat(nil, interpolated, dims)
	}
	if selected == nil {
		selected = make([]int64, tensor.NumElements(dims))
	}
	return tensor.NewInt(p.outDType, selected, dims...)
}

// buildFloat assembles a floating output from either selected elements or
// interpolated values.
func (p *Plan) buildFloat(selected, interpolated []float64, dims []int) (*tensor.Array, error) {
	vals := selected
	if vals == nil {
		vals = interpolated
	}
	if vals == nil {
		vals = make([]float64, tensor.NumElements(dims))
	}
	return tensor.NewFloat(p.outDType, vals, dims...)
}
