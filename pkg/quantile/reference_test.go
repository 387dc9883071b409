package quantile

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/panbanda/pctl/pkg/tensor"
)

// referencePercentile is a brute-force percentile that groups elements by
// their kept-axis coordinates, sorts each group and indexes it directly.
// It returns numpy-style output dims and values laid out [level][kept...].
func referencePercentile(t *testing.T, x *tensor.Array, qs []float64, vector bool, axis []int, m Interpolation, keepDims bool) ([]int, []float64) {
	t.Helper()
	dims := x.Dims()
	rank := len(dims)

	reduced := make([]bool, rank)
	if len(axis) == 0 {
		for i := range reduced {
			reduced[i] = true
		}
	}
	for _, a := range axis {
		if a < 0 {
			a += rank
		}
		reduced[a] = true
	}

	var keptDims []int
	for i, d := range dims {
		if !reduced[i] {
			keptDims = append(keptDims, d)
		}
	}
	groups := make([][]float64, tensor.NumElements(keptDims))

	idx := make([]int, rank)
	for flat := 0; flat < x.Size(); flat++ {
		key := 0
		for i := 0; i < rank; i++ {
			if !reduced[i] {
				key = key*dims[i] + idx[i]
			}
		}
		groups[key] = append(groups[key], x.Flat(flat))
		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < dims[i] {
				break
			}
			idx[i] = 0
		}
	}

	var vals []float64
	for _, q := range qs {
		for _, g := range groups {
			sorted := append([]float64{}, g...)
			sort.Float64s(sorted)
			n := len(sorted)
			p := float64(n-1) * q / 100
			var v float64
			switch m {
			case Lower:
				v = sorted[int(math.Floor(p))]
			case Higher:
				v = sorted[int(math.Ceil(p))]
			case Nearest:
				v = sorted[int(math.RoundToEven(p))]
			case Midpoint:
				lo, hi := int(math.Floor(p)), int(math.Ceil(p))
				v = sorted[lo] + (p-float64(lo))*(sorted[hi]-sorted[lo])
			}
			vals = append(vals, v)
		}
	}

	var outDims []int
	if vector {
		outDims = append(outDims, len(qs))
	}
	for i, d := range dims {
		switch {
		case !reduced[i]:
			outDims = append(outDims, d)
		case keepDims:
			outDims = append(outDims, 1)
		}
	}
	if outDims == nil {
		outDims = []int{}
	}
	return outDims, vals
}

func randomArray(t *testing.T, seed uint64, dims ...int) *tensor.Array {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float64, tensor.NumElements(dims))
	for i := range data {
		data[i] = rng.Float64()
	}
	x, err := tensor.FromFloat64s(data, dims...)
	require.NoError(t, err)
	return x
}

func assertAllClose(t *testing.T, want, got []float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		if !scalar.EqualWithinAbsOrRel(want[i], got[i], 1e-12, 1e-12) {
			t.Fatalf("element %d: want %v, got %v", i, want[i], got[i])
		}
	}
}
