package quantile

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/pctl/pkg/tensor"
)

func TestInvalidInterpolationRaises(t *testing.T) {
	x := tensor.Vector(1, 5, 3, 2, 4)
	_, err := NewPlan(x, tensor.Scalar(0.5), WithInterpolationName("bad"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Contains(t, err.Error(), "interpolation")

	_, err = NewPlan(x, tensor.Scalar(0.5), WithInterpolation(Interpolation(42)))
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestParseInterpolation(t *testing.T) {
	for name, want := range map[string]Interpolation{
		"lower":    Lower,
		"higher":   Higher,
		"nearest":  Nearest,
		"midpoint": Midpoint,
		"linear":   Midpoint,
		" Lower ":  Lower,
	} {
		got, err := ParseInterpolation(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	for _, m := range Interpolations {
		got, err := ParseInterpolation(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func Test2DQRaisesStatic(t *testing.T) {
	q, err := tensor.FromFloat64s([]float64{0.5}, 1, 1)
	require.NoError(t, err)
	_, err = NewPlan(tensor.Vector(1, 5, 3, 2, 4), q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Regexp(t, "Expected.*ndims", err.Error())
	assert.Contains(t, err.Error(), "rank")
}

func Test2DQRaisesDynamic(t *testing.T) {
	q, err := tensor.FromFloat64s([]float64{0.5}, 1, 1)
	require.NoError(t, err)
	qph, err := tensor.WithStaticShape(q, tensor.UnknownShape())
	require.NoError(t, err)

	p, err := NewPlan(tensor.Vector(1, 5, 3, 2, 4), qph, WithValidateArgs(true))
	require.NoError(t, err, "rank is unknown until execution")
	assert.False(t, p.OutputShape().RankKnown())

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Contains(t, err.Error(), "rank")

	_, err = Percentile(context.Background(), tensor.Vector(1, 2), qph)
	assert.True(t, errors.Is(err, ErrRuntime))
}

func TestRangeValidation(t *testing.T) {
	x := tensor.Vector(1, 5, 3, 2, 4)

	t.Run("static q fails at plan time", func(t *testing.T) {
		_, err := NewPlan(x, tensor.Vector(50, 101), WithValidateArgs(true))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRange))
		assert.Contains(t, err.Error(), "q[1]")
	})

	t.Run("dynamic q fails at run time", func(t *testing.T) {
		q, err := tensor.WithStaticShape(tensor.Vector(-1), tensor.DynamicShape(1))
		require.NoError(t, err)
		p, err := NewPlan(x, q, WithValidateArgs(true))
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.True(t, errors.Is(err, ErrRange))
	})

	t.Run("NaN is out of range", func(t *testing.T) {
		_, err := NewPlan(x, tensor.Scalar(math.NaN()), WithValidateArgs(true))
		assert.True(t, errors.Is(err, ErrRange))
	})

	t.Run("unvalidated out of bounds is a runtime failure", func(t *testing.T) {
		_, err := Percentile(context.Background(), x, tensor.Scalar(101), WithInterpolation(Higher))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRuntime))

		_, err = Percentile(context.Background(), x, tensor.Scalar(-50), WithInterpolation(Lower))
		assert.True(t, errors.Is(err, ErrRuntime))

		_, err = Percentile(context.Background(), x, tensor.Scalar(math.NaN()))
		assert.True(t, errors.Is(err, ErrRuntime))
	})

	t.Run("boundaries are valid", func(t *testing.T) {
		out, err := Percentile(context.Background(), x, tensor.Vector(0, 100), WithValidateArgs(true))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 5}, out.Float64s())
	})
}

func TestAxisErrors(t *testing.T) {
	x := randomArray(t, 13, 2, 3)
	for _, axis := range [][]int{{2}, {-3}, {0, 0}, {1, -1}} {
		_, err := NewPlan(x, tensor.Scalar(50), WithAxis(axis...))
		require.Error(t, err, "axis=%v", axis)
		assert.True(t, errors.Is(err, ErrAxis), "axis=%v", axis)
	}
}

func TestUnknownInputRank(t *testing.T) {
	x, err := tensor.WithStaticShape(tensor.Vector(1, 2, 3), tensor.UnknownShape())
	require.NoError(t, err)
	_, err = NewPlan(x, tensor.Scalar(50))
	assert.True(t, errors.Is(err, ErrShape))
}

func TestNilArguments(t *testing.T) {
	_, err := NewPlan(nil, tensor.Scalar(50))
	assert.True(t, errors.Is(err, ErrShape))
	_, err = NewPlan(tensor.Vector(1), nil)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestEmptyReduction(t *testing.T) {
	x, err := tensor.FromFloat64s(nil, 3, 0)
	require.NoError(t, err)
	_, err = Percentile(context.Background(), x, tensor.Scalar(50), WithAxis(1))
	assert.True(t, errors.Is(err, ErrEmpty))
}
