package arrayio

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/panbanda/pctl/pkg/tensor"
)

// Document is the object form of an encoded array. Data is nested to match
// Shape; a rank-0 array carries a single value.
type Document struct {
	DType string `json:"dtype" yaml:"dtype"`
	Shape []int  `json:"shape" yaml:"shape"`
	Data  any    `json:"data" yaml:"data"`
}

// ToDocument converts an array to its document form.
func ToDocument(a *tensor.Array) Document {
	dims := a.Dims()
	pos := 0
	return Document{
		DType: a.DType().String(),
		Shape: dims,
		Data:  nest(a, dims, &pos),
	}
}

func nest(a *tensor.Array, dims []int, pos *int) any {
	if len(dims) == 0 {
		v := element(a, *pos)
		*pos++
		return v
	}
	out := make([]any, dims[0])
	for i := range out {
		out[i] = nest(a, dims[1:], pos)
	}
	return out
}

func element(a *tensor.Array, i int) any {
	if a.DType().IsInteger() {
		return a.Int64Data()[i]
	}
	return Value(a.Float64Data()[i])
}

// Value returns f unchanged when finite and its string spelling otherwise.
func Value(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// Marshal encodes an array in the given format.
func Marshal(a *tensor.Array, format Format) ([]byte, error) {
	doc := ToDocument(a)
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// Encode writes an array document to w.
func Encode(w io.Writer, a *tensor.Array, format Format) error {
	data, err := Marshal(a, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if format == FormatJSON {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
