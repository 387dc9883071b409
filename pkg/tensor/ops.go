package tensor

import "fmt"

// Transpose permutes the axes of a so that output axis i is input axis
// perm[i]. The identity permutation returns a itself without copying.
// Static sizes are permuted along with the concrete dims.
func Transpose(a *Array, perm []int) (*Array, error) {
	rank := len(a.dims)
	if len(perm) != rank {
		return nil, fmt.Errorf("transpose: permutation %v has length %d, want %d", perm, len(perm), rank)
	}
	seen := make([]bool, rank)
	identity := true
	for i, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return nil, fmt.Errorf("transpose: %v is not a permutation of %d axes", perm, rank)
		}
		seen[p] = true
		if p != i {
			identity = false
		}
	}
	if identity {
		return a, nil
	}

	outDims := make([]int, rank)
	for i, p := range perm {
		outDims[i] = a.dims[p]
	}
	inStrides := strides(a.dims)
	permStrides := make([]int, rank)
	for i, p := range perm {
		permStrides[i] = inStrides[p]
	}

	out := &Array{dtype: a.dtype, dims: outDims}
	n := NumElements(outDims)
	if a.dtype.IsFloat() {
		out.floats = make([]float64, n)
	} else {
		out.ints = make([]int64, n)
	}

	idx := make([]int, rank)
	for o := 0; o < n; o++ {
		off := 0
		for i, v := range idx {
			off += v * permStrides[i]
		}
		if out.floats != nil {
			out.floats[o] = a.floats[off]
		} else {
			out.ints[o] = a.ints[off]
		}
		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outDims[i] {
				break
			}
			idx[i] = 0
		}
	}

	if a.static.RankKnown() {
		sdims := make([]int, rank)
		for i, p := range perm {
			sdims[i] = a.static.dims[p]
		}
		out.static = MakeShape(sdims...)
	} else {
		out.static = UnknownShape()
	}
	return out, nil
}

// Reshape returns a view of a with new dims sharing the same storage.
// The element count must be unchanged. The result's static shape is the
// concrete dims.
func Reshape(a *Array, dims ...int) (*Array, error) {
	if err := checkLen(a.Size(), dims); err != nil {
		return nil, fmt.Errorf("reshape %v to %v: %w", a.dims, dims, err)
	}
	d := append([]int{}, dims...)
	return &Array{
		dtype:  a.dtype,
		dims:   d,
		static: MakeShape(d...),
		ints:   a.ints,
		floats: a.floats,
	}, nil
}
