package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/pkg/tensor"
)

// InputArray names where a tool reads its array from.
type InputArray struct {
	Array  string `json:"array,omitempty" jsonschema:"Inline JSON or YAML array document. Takes precedence over path."`
	Path   string `json:"path,omitempty" jsonschema:"Path to a .json, .yaml or .yml array document."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// PercentileInput configures the percentile tool.
type PercentileInput struct {
	InputArray
	Q             []float64 `json:"q" jsonschema:"Percentile levels in [0, 100]."`
	ScalarQ       bool      `json:"scalar_q,omitempty" jsonschema:"Treat a single level as a scalar so the result has no q axis."`
	Axis          []int     `json:"axis,omitempty" jsonschema:"Axes to reduce. Negative values count from the end. Empty reduces every axis."`
	Interpolation string    `json:"interpolation,omitempty" jsonschema:"lower, higher, nearest or midpoint. Defaults to the configured policy."`
	KeepDims      *bool     `json:"keep_dims,omitempty" jsonschema:"Keep reduced axes as size-1 dimensions. Defaults to the configured value."`
	ValidateArgs  *bool     `json:"validate_args,omitempty" jsonschema:"Reject levels outside [0, 100] instead of failing at selection time. Defaults to the configured value."`
}

// DescribeInput configures the describe tool.
type DescribeInput struct {
	InputArray
}

func getFormat(in InputArray) output.Format {
	switch strings.ToLower(in.Format) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

// loadArray decodes the inline document or reads the file, returning the
// raw bytes alongside for cache keys.
func loadArray(in InputArray) (*tensor.Array, []byte, error) {
	if doc := strings.TrimSpace(in.Array); doc != "" {
		format := arrayio.FormatYAML
		if strings.HasPrefix(doc, "[") || strings.HasPrefix(doc, "{") {
			format = arrayio.FormatJSON
		}
		raw := []byte(doc)
		a, err := arrayio.Decode(raw, format)
		return a, raw, err
	}
	if in.Path != "" {
		return arrayio.ReadFile(in.Path)
	}
	return nil, nil, errors.New("either array or path is required")
}

func formatOutput(r output.Renderable, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(r.RenderData(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.RenderMarkdown(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return output.MarshalTOON(r.RenderData())
	}
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handlePercentile(ctx context.Context, req *mcp.CallToolRequest, input PercentileInput) (*mcp.CallToolResult, any, error) {
	x, raw, err := loadArray(input.InputArray)
	if err != nil {
		return toolError(err.Error())
	}

	r := s.compute.NewRequest(input.Q...)
	r.ScalarQ = input.ScalarQ
	r.Axes = input.Axis
	if input.Interpolation != "" {
		r.Interpolation = input.Interpolation
	}
	if input.KeepDims != nil {
		r.KeepDims = *input.KeepDims
	}
	if input.ValidateArgs != nil {
		r.ValidateArgs = *input.ValidateArgs
	}

	res, err := s.compute.Compute(ctx, x, raw, r)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.ArrayTable("Percentiles", res.Output, res.Labels...), getFormat(input.InputArray))
}

func (s *Server) handleDescribe(ctx context.Context, req *mcp.CallToolRequest, input DescribeInput) (*mcp.CallToolResult, any, error) {
	x, _, err := loadArray(input.InputArray)
	if err != nil {
		return toolError(err.Error())
	}

	sum, err := s.compute.Describe(ctx, x)
	if err != nil {
		return toolError(err.Error())
	}
	title := input.Path
	if title == "" {
		title = "Summary"
	}
	return toolResult(sum.Report(title), getFormat(input.InputArray))
}
