// Package arrayio reads and writes n-dimensional arrays as JSON or YAML
// documents. A document is either a nested list of numbers or an object:
//
//	{"dtype": "float64", "shape": [2, 3], "data": [1, 2, 3, 4, 5, 6]}
//
// When shape is present, data may be flat or nested as long as the element
// count matches. Without dtype, integer literals decode as int64 and
// anything else as float64.
package arrayio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/pctl/pkg/tensor"
)

// ErrInvalidDocument is returned for documents that fail schema validation
// or whose data does not agree with the declared shape or dtype.
var ErrInvalidDocument = errors.New("invalid array document")

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile decodes the array stored at path and also returns the raw bytes.
func ReadFile(path string) (*tensor.Array, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	a, err := Decode(raw, FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, raw, nil
}

// Decode validates and decodes a document.
func Decode(raw []byte, format Format) (*tensor.Array, error) {
	inst, err := instance(raw, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile array schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var (
		data     any
		dtypeStr string
		shape    []int
		hasShape bool
	)
	if obj, ok := inst.(map[string]any); ok {
		data = obj["data"]
		if s, ok := obj["dtype"].(string); ok {
			dtypeStr = s
		}
		if declared, ok := obj["shape"].([]any); ok {
			hasShape = true
			shape = make([]int, len(declared))
			for i, d := range declared {
				n, err := strconv.Atoi(fmt.Sprint(d))
				if err != nil {
					return nil, fmt.Errorf("%w: shape[%d]: %v", ErrInvalidDocument, i, err)
				}
				shape[i] = n
			}
		}
	} else {
		data = inst
	}

	dims, err := nestedDims(data)
	if err != nil {
		return nil, err
	}
	var leaves []any
	flatten(data, &leaves)

	if hasShape {
		if n := tensor.NumElements(shape); n != len(leaves) {
			return nil, fmt.Errorf("%w: shape %v holds %d elements, data has %d", ErrInvalidDocument, shape, n, len(leaves))
		}
		dims = shape
	}

	dtype, err := documentDType(dtypeStr, leaves)
	if err != nil {
		return nil, err
	}

	if dtype.IsInteger() {
		vals := make([]int64, len(leaves))
		for i, v := range leaves {
			n, err := parseInt(v)
			if err != nil {
				return nil, fmt.Errorf("%w: data[%d]: %v", ErrInvalidDocument, i, err)
			}
			if dtype == tensor.Int32 && (n < math.MinInt32 || n > math.MaxInt32) {
				return nil, fmt.Errorf("%w: data[%d] = %d does not fit int32", ErrInvalidDocument, i, n)
			}
			vals[i] = n
		}
		return tensor.NewInt(dtype, vals, dims...)
	}

	vals := make([]float64, len(leaves))
	for i, v := range leaves {
		f, err := parseFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: data[%d]: %v", ErrInvalidDocument, i, err)
		}
		vals[i] = f
	}
	return tensor.NewFloat(dtype, vals, dims...)
}

// instance converts raw bytes to the generic form the schema validator
// expects: json.Number for numbers, map[string]any for objects.
func instance(raw []byte, format Format) (any, error) {
	if format == FormatYAML {
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		js, err := json.Marshal(normalizeYAML(v))
		if err != nil {
			return nil, err
		}
		raw = js
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

// normalizeYAML makes a decoded YAML tree JSON-encodable. Non-finite floats
// become their string spellings.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	case float64:
		switch {
		case math.IsNaN(t):
			return "NaN"
		case math.IsInf(t, 1):
			return "Infinity"
		case math.IsInf(t, -1):
			return "-Infinity"
		}
		return t
	default:
		return v
	}
}

// nestedDims infers the dimensions of a nested list. Ragged lists fail.
func nestedDims(v any) ([]int, error) {
	list, ok := v.([]any)
	if !ok {
		return []int{}, nil
	}
	if len(list) == 0 {
		return []int{0}, nil
	}
	inner, err := nestedDims(list[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(list); i++ {
		d, err := nestedDims(list[i])
		if err != nil {
			return nil, err
		}
		if !slices.Equal(d, inner) {
			return nil, fmt.Errorf("%w: ragged data, element %d has dims %v, want %v", ErrInvalidDocument, i, d, inner)
		}
	}
	return append([]int{len(list)}, inner...), nil
}

func flatten(v any, out *[]any) {
	if list, ok := v.([]any); ok {
		for _, e := range list {
			flatten(e, out)
		}
		return
	}
	*out = append(*out, v)
}

func documentDType(name string, leaves []any) (tensor.DType, error) {
	if name != "" {
		d, err := tensor.ParseDType(name)
		if err != nil {
			return tensor.InvalidDType, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return d, nil
	}
	for _, v := range leaves {
		num, ok := v.(json.Number)
		if !ok || strings.ContainsAny(string(num), ".eE") {
			return tensor.Float64, nil
		}
	}
	return tensor.Int64, nil
}

func parseInt(v any) (int64, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	// integral floats such as 3.0 or 1e3 are accepted
	f, err := num.Float64()
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is not an integer", num)
	}
	return int64(f), nil
}

func parseFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case string:
		switch strings.ToLower(t) {
		case "nan":
			return math.NaN(), nil
		case "infinity", "+infinity", "inf", "+inf":
			return math.Inf(1), nil
		case "-infinity", "-inf":
			return math.Inf(-1), nil
		}
	}
	return 0, fmt.Errorf("%v is not a number", v)
}
