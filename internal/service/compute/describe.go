package compute

import (
	"context"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/pkg/quantile"
	"github.com/panbanda/pctl/pkg/tensor"
)

// DescribeLevels are the percentiles reported by Describe.
var DescribeLevels = []float64{0, 25, 50, 75, 100}

// Level is one percentile of a summary.
type Level struct {
	Q     float64 `json:"q"`
	Value any     `json:"value"`
}

// Summary describes the distribution of every element of an array.
type Summary struct {
	DType       string  `json:"dtype"`
	Shape       []int   `json:"shape"`
	Count       int     `json:"count"`
	Mean        any     `json:"mean"`
	StdDev      any     `json:"stddev"`
	Percentiles []Level `json:"percentiles"`
}

// Describe summarizes x with the configured interpolation. The standard
// deviation is the unbiased sample estimate and is NaN for a single element.
func (s *Service) Describe(ctx context.Context, x *tensor.Array) (*Summary, error) {
	if x.Size() == 0 {
		return nil, fmt.Errorf("%w: cannot describe an empty array", quantile.ErrEmpty)
	}

	req := s.NewRequest(DescribeLevels...)
	req.KeepDims = false
	out, err := s.Compute(ctx, x, nil, req)
	if err != nil {
		return nil, err
	}

	vals := x.Float64s()
	mean, std := stat.MeanStdDev(vals, nil)

	sum := &Summary{
		DType:  x.DType().String(),
		Shape:  x.Dims(),
		Count:  len(vals),
		Mean:   arrayio.Value(mean),
		StdDev: arrayio.Value(std),
	}
	for i, q := range DescribeLevels {
		var v any
		if out.Output.DType().IsInteger() {
			v = out.Output.Int64Data()[i]
		} else {
			v = arrayio.Value(out.Output.Float64Data()[i])
		}
		sum.Percentiles = append(sum.Percentiles, Level{Q: q, Value: v})
	}
	return sum, nil
}

// Report renders the summary as a percentile table plus moments.
func (s *Summary) Report(title string) *output.Report {
	rows := make([][]string, len(s.Percentiles))
	for i, l := range s.Percentiles {
		rows[i] = []string{strconv.FormatFloat(l.Q, 'g', -1, 64), fmt.Sprint(l.Value)}
	}
	return &output.Report{
		Title: title,
		Sections: []output.Renderable{
			output.NewTable("Percentiles", []string{"q", "value"}, rows, nil, nil),
			&output.Section{
				Title: "Moments",
				Content: fmt.Sprintf("count  %d\nmean   %v\nstddev %v\ndtype  %s\nshape  %v",
					s.Count, s.Mean, s.StdDev, s.DType, s.Shape),
			},
		},
		Data: s,
	}
}
