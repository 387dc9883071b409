// Package compute runs percentile requests against decoded arrays, applying
// configured defaults and the on-disk result cache. The CLI and the MCP
// server both go through it.
package compute

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/internal/cache"
	"github.com/panbanda/pctl/pkg/config"
	"github.com/panbanda/pctl/pkg/quantile"
	"github.com/panbanda/pctl/pkg/tensor"
)

// Service orchestrates percentile computations.
type Service struct {
	config *config.Config
	cache  *cache.Cache
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the result cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a compute service. Without options it uses the default
// configuration, no cache and a no-op logger.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache, _ = cache.New("", 0, false)
	}
	return s
}

// Request describes one percentile computation.
type Request struct {
	// Q holds the levels. With ScalarQ set and a single level, q is passed
	// as a rank-0 array and the result has no leading levels axis.
	Q       []float64
	ScalarQ bool

	Axes          []int
	Interpolation string
	KeepDims      bool
	ValidateArgs  bool

	// Dynamic hides the concrete sizes of x and q from the planner, so
	// size-dependent checks happen when the plan runs.
	Dynamic bool

	OnProgress func(rows int)
}

// NewRequest returns a request pre-filled from the configured defaults.
func (s *Service) NewRequest(q ...float64) Request {
	return Request{
		Q:             q,
		Interpolation: s.config.Percentile.Interpolation,
		KeepDims:      s.config.Percentile.KeepDims,
		ValidateArgs:  s.config.Percentile.ValidateArgs,
	}
}

// Result is a computed percentile array.
type Result struct {
	Output *tensor.Array
	// Labels names each output axis for display.
	Labels []string
	Cached bool
}

// Compute evaluates req over x. raw is the document x was decoded from and
// keys the cache; a nil raw bypasses the cache.
func (s *Service) Compute(ctx context.Context, x *tensor.Array, raw []byte, req Request) (*Result, error) {
	q, err := levelsArray(req)
	if err != nil {
		return nil, err
	}

	if req.Interpolation == "" {
		req.Interpolation = s.config.Percentile.Interpolation
	}
	opts := s.options(req)

	labels, err := outputLabels(x.Rank(), req)
	if err != nil {
		return nil, err
	}

	var key string
	if raw != nil && s.cache.Enabled() {
		key = cache.Key(raw, req.params()...)
		if data, ok := s.cache.Get(key); ok {
			out, err := arrayio.Decode(data, arrayio.FormatJSON)
			if err == nil {
				s.logger.Debug("cache hit", zap.String("key", key[:12]))
				return &Result{Output: out, Labels: labels, Cached: true}, nil
			}
			s.logger.Warn("dropping unreadable cache entry", zap.String("key", key[:12]), zap.Error(err))
			if err := s.cache.Invalidate(key); err != nil {
				s.logger.Warn("failed to invalidate cache entry", zap.Error(err))
			}
		}
	}

	if req.Dynamic {
		if x, err = tensor.WithStaticShape(x, tensor.DynamicShape(x.Rank())); err != nil {
			return nil, err
		}
		if q, err = tensor.WithStaticShape(q, tensor.DynamicShape(q.Rank())); err != nil {
			return nil, err
		}
	}

	plan, err := quantile.NewPlan(x, q, opts...)
	if err != nil {
		return nil, err
	}
	out, err := plan.Run(ctx)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if data, err := arrayio.Marshal(out, arrayio.FormatJSON); err == nil {
			if err := s.cache.Set(key, data); err != nil {
				s.logger.Warn("failed to cache result", zap.Error(err))
			}
		}
	}

	return &Result{Output: out, Labels: labels}, nil
}

func (s *Service) options(req Request) []quantile.Option {
	pc := s.config.Percentile
	opts := []quantile.Option{
		quantile.WithAxis(req.Axes...),
		quantile.WithKeepDims(req.KeepDims),
		quantile.WithValidateArgs(req.ValidateArgs),
		quantile.WithWorkers(pc.Workers),
		quantile.WithChunkRows(pc.ChunkRows),
		quantile.WithSortThreshold(pc.SortThreshold),
		quantile.WithLogger(s.logger.Named("quantile")),
		quantile.WithInterpolationName(req.Interpolation),
	}
	if req.OnProgress != nil {
		opts = append(opts, quantile.WithProgress(req.OnProgress))
	}
	return opts
}

func levelsArray(req Request) (*tensor.Array, error) {
	if len(req.Q) == 0 {
		return nil, fmt.Errorf("%w: at least one percentile level is required", quantile.ErrConfig)
	}
	if req.ScalarQ {
		if len(req.Q) != 1 {
			return nil, fmt.Errorf("%w: scalar q needs exactly one level, got %d", quantile.ErrConfig, len(req.Q))
		}
		return tensor.Scalar(req.Q[0]), nil
	}
	return tensor.Vector(req.Q...), nil
}

// params canonicalizes everything that changes the result, for cache keys.
func (r Request) params() []string {
	levels := make([]string, len(r.Q))
	for i, v := range r.Q {
		levels[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	axes := make([]string, len(r.Axes))
	for i, a := range r.Axes {
		axes[i] = strconv.Itoa(a)
	}
	interp := strings.ToLower(strings.TrimSpace(r.Interpolation))
	return []string{
		"q=" + strings.Join(levels, ","),
		"scalar=" + strconv.FormatBool(r.ScalarQ),
		"axis=" + strings.Join(axes, ","),
		"interpolation=" + interp,
		"keep_dims=" + strconv.FormatBool(r.KeepDims),
		"validate=" + strconv.FormatBool(r.ValidateArgs),
		"dynamic=" + strconv.FormatBool(r.Dynamic),
	}
}

// outputLabels names the result axes after the input axes they came from.
func outputLabels(rank int, req Request) ([]string, error) {
	axes, err := quantile.ResolveAxes(rank, req.Axes)
	if err != nil {
		return nil, err
	}
	var labels []string
	if !req.ScalarQ {
		labels = append(labels, "q")
	}
	for i := 0; i < rank; i++ {
		if axes.Contains(i) && !req.KeepDims {
			continue
		}
		labels = append(labels, fmt.Sprintf("axis %d", i))
	}
	return labels, nil
}
