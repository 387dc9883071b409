package quantile

// reassembleDims returns the output dims for srcDims reduced over axes.
// Reduced axes are dropped, or kept as size 1 under keepDims. A vector of
// levels prepends an axis of size levels. srcDims may contain
// tensor.DynamicDim entries, which pass through for kept axes.
func reassembleDims(srcDims []int, axes AxisSet, keepDims bool, levels int, vector bool) []int {
	out := make([]int, 0, len(srcDims)+1)
	if vector {
		out = append(out, levels)
	}
	for i, d := range srcDims {
		switch {
		case !axes.Contains(i):
			out = append(out, d)
		case keepDims:
			out = append(out, 1)
		}
	}
	return out
}
