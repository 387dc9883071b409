package output

import (
	"fmt"
	"strconv"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/pkg/tensor"
)

// ArrayTable lays an array out one element per row. The leading columns hold
// the element's index along each axis, named by labels; missing labels
// default to "axis N". The serialized form is the array document.
func ArrayTable(title string, a *tensor.Array, labels ...string) *Table {
	dims := a.Dims()
	headers := make([]string, 0, len(dims)+1)
	for i := range dims {
		if i < len(labels) && labels[i] != "" {
			headers = append(headers, labels[i])
		} else {
			headers = append(headers, fmt.Sprintf("axis %d", i))
		}
	}
	headers = append(headers, "value")

	size := a.Size()
	rows := make([][]string, 0, size)
	idx := make([]int, len(dims))
	for flat := 0; flat < size; flat++ {
		row := make([]string, 0, len(headers))
		for _, v := range idx {
			row = append(row, strconv.Itoa(v))
		}
		row = append(row, FormatValue(a, flat))
		rows = append(rows, row)

		for ax := len(idx) - 1; ax >= 0; ax-- {
			idx[ax]++
			if idx[ax] < dims[ax] {
				break
			}
			idx[ax] = 0
		}
	}

	return NewTable(title, headers, rows, nil, arrayio.ToDocument(a))
}

// FormatValue renders element i of a in its shortest exact form.
func FormatValue(a *tensor.Array, i int) string {
	if a.DType().IsInteger() {
		return strconv.FormatInt(a.Int64Data()[i], 10)
	}
	bits := 64
	if a.DType() == tensor.Float32 {
		bits = 32
	}
	return strconv.FormatFloat(a.Float64Data()[i], 'g', -1, bits)
}
