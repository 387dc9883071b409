package quantile

import (
	"fmt"

	"github.com/panbanda/pctl/pkg/tensor"
)

// Flattened is a 2-D (Rows, N) view of an input in which every reduction
// axis has been moved to the back and merged into one axis of size N.
type Flattened struct {
	Rows int
	N    int
	// KeptDims are the sizes of the surviving axes, in original order.
	KeptDims []int

	data *tensor.Array
}

// Flatten permutes the reduction axes of x to the back and collapses them.
// The kept axes keep their relative order at the front.
func Flatten(x *tensor.Array, axes AxisSet) (*Flattened, error) {
	dims := x.Dims()
	kept := axes.Complement(len(dims))

	perm := make([]int, 0, len(dims))
	perm = append(perm, kept...)
	perm = append(perm, axes...)

	transposed, err := tensor.Transpose(x, perm)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}

	keptDims := make([]int, len(kept))
	rows := 1
	for i, a := range kept {
		keptDims[i] = dims[a]
		rows *= dims[a]
	}
	n := 1
	for _, a := range axes {
		n *= dims[a]
	}

	view, err := tensor.Reshape(transposed, rows, n)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}
	return &Flattened{Rows: rows, N: n, KeptDims: keptDims, data: view}, nil
}

// DType returns the element type of the flattened data.
func (f *Flattened) DType() tensor.DType {
	return f.data.DType()
}

// FloatRow returns row i of a floating view. The slice aliases the view.
func (f *Flattened) FloatRow(i int) []float64 {
	return f.data.Float64Data()[i*f.N : (i+1)*f.N]
}

// IntRow returns row i of an integer view. The slice aliases the view.
func (f *Flattened) IntRow(i int) []int64 {
	return f.data.Int64Data()[i*f.N : (i+1)*f.N]
}
