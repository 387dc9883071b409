package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/internal/service/compute"
	"github.com/panbanda/pctl/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("1.0.0-test", compute.New())
	if s == nil || s.server == nil {
		t.Fatal("NewServer() returned an incomplete server")
	}
	return s
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestServerCreationDefaults(t *testing.T) {
	s := NewServer("", nil)
	if s.compute == nil {
		t.Fatal("NewServer() should create a default compute service")
	}
}

func TestToolDescriptions(t *testing.T) {
	for name, desc := range map[string]string{
		"percentile": describePercentile(),
		"describe":   describeDescribe(),
	} {
		for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "RETURNS:"} {
			if !strings.Contains(desc, section) {
				t.Errorf("%s description missing %s", name, section)
			}
		}
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format string
		want   output.Format
	}{
		{"", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"toon", output.FormatTOON},
		{"xml", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(InputArray{Format: tt.format}); got != tt.want {
			t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestToolError(t *testing.T) {
	res, _, err := toolError("bad input")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, res); got != "Error: bad input" {
		t.Errorf("toolError text = %q", got)
	}
}

func TestHandlePercentileInline(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handlePercentile(context.Background(), nil, PercentileInput{
		InputArray:    InputArray{Array: `[[1, 2, 3, 4], [10, 20, 30, 40]]`, Format: "json"},
		Q:             []float64{50},
		Axis:          []int{1},
		Interpolation: "midpoint",
	})
	if err != nil {
		t.Fatalf("handlePercentile() error: %v", err)
	}
	if res.IsError {
		t.Fatalf("handlePercentile() failed: %s", resultText(t, res))
	}

	var doc struct {
		DType string      `json:"dtype"`
		Shape []int       `json:"shape"`
		Data  [][]float64 `json:"data"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &doc); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if doc.DType != "float64" || len(doc.Shape) != 2 || doc.Shape[0] != 1 || doc.Shape[1] != 2 {
		t.Errorf("result header = %s %v", doc.DType, doc.Shape)
	}
	if doc.Data[0][0] != 2.5 || doc.Data[0][1] != 25 {
		t.Errorf("result data = %v, want [[2.5 25]]", doc.Data)
	}
}

func TestHandlePercentileYAMLAndMarkdown(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handlePercentile(context.Background(), nil, PercentileInput{
		InputArray: InputArray{Array: "- 5\n- 1\n- 3\n", Format: "markdown"},
		Q:          []float64{100},
		ScalarQ:    true,
	})
	if err != nil {
		t.Fatalf("handlePercentile() error: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "| value |") || !strings.Contains(text, "| 5 |") {
		t.Errorf("markdown result = %q", text)
	}
}

func TestHandlePercentileFromPath(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "latency.json")
	if err := os.WriteFile(path, []byte(`{"dtype": "int32", "data": [4, 8, 15, 16, 23, 42]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	res, _, err := s.handlePercentile(context.Background(), nil, PercentileInput{
		InputArray: InputArray{Path: path},
		Q:          []float64{0, 100},
	})
	if err != nil {
		t.Fatalf("handlePercentile() error: %v", err)
	}
	if res.IsError {
		t.Fatalf("handlePercentile() failed: %s", resultText(t, res))
	}
	text := resultText(t, res)
	for _, want := range []string{"int32", "4", "42"} {
		if !strings.Contains(text, want) {
			t.Errorf("TOON result missing %q:\n%s", want, text)
		}
	}
}

func TestHandlePercentileErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Percentile.ValidateArgs = true
	s := NewServer("test", compute.New(compute.WithConfig(cfg)))

	tests := []struct {
		name  string
		input PercentileInput
		want  string
	}{
		{"no input", PercentileInput{Q: []float64{50}}, "array or path"},
		{"bad document", PercentileInput{InputArray: InputArray{Array: `[1, "x"]`}, Q: []float64{50}}, "invalid array document"},
		{"out of range", PercentileInput{InputArray: InputArray{Array: `[1, 2]`}, Q: []float64{101}}, "not in [0, 100]"},
		{"bad axis", PercentileInput{InputArray: InputArray{Array: `[1, 2]`}, Q: []float64{50}, Axis: []int{4}}, "out of range"},
		{"bad interpolation", PercentileInput{InputArray: InputArray{Array: `[1, 2]`}, Q: []float64{50}, Interpolation: "cubic"}, "interpolation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handlePercentile(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handlePercentile() returned a protocol error: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected an error result")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("error %q should mention %q", text, tt.want)
			}
		})
	}
}

func TestHandlePercentileOverridesConfigFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Percentile.KeepDims = true
	cfg.Percentile.ValidateArgs = true
	s := NewServer("test", compute.New(compute.WithConfig(cfg)))

	shapeOf := func(t *testing.T, input PercentileInput) []int {
		t.Helper()
		input.InputArray = InputArray{Array: `[[1, 2], [3, 4]]`, Format: "json"}
		input.Q = []float64{50}
		input.ScalarQ = true
		res, _, err := s.handlePercentile(context.Background(), nil, input)
		if err != nil {
			t.Fatalf("handlePercentile() error: %v", err)
		}
		if res.IsError {
			t.Fatalf("handlePercentile() failed: %s", resultText(t, res))
		}
		var doc struct {
			Shape []int `json:"shape"`
		}
		if err := json.Unmarshal([]byte(resultText(t, res)), &doc); err != nil {
			t.Fatalf("result is not JSON: %v", err)
		}
		return doc.Shape
	}

	if got := shapeOf(t, PercentileInput{}); len(got) != 2 || got[0] != 1 || got[1] != 1 {
		t.Errorf("configured keep_dims: shape = %v, want [1 1]", got)
	}
	off := false
	if got := shapeOf(t, PercentileInput{KeepDims: &off}); len(got) != 0 {
		t.Errorf("keep_dims=false: shape = %v, want []", got)
	}

	// validate_args=false lets an out-of-range level through to selection,
	// which reports an index error instead of a range error.
	res, _, err := s.handlePercentile(context.Background(), nil, PercentileInput{
		InputArray:   InputArray{Array: `[1, 2]`},
		Q:            []float64{101},
		ValidateArgs: &off,
	})
	if err != nil {
		t.Fatalf("handlePercentile() error: %v", err)
	}
	if text := resultText(t, res); !res.IsError || strings.Contains(text, "not in [0, 100]") {
		t.Errorf("validate_args=false result = %q", text)
	}
}

func TestHandleDescribe(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleDescribe(context.Background(), nil, DescribeInput{
		InputArray: InputArray{Array: `[2, 4, 4, 4, 5, 5, 7, 9]`, Format: "json"},
	})
	if err != nil {
		t.Fatalf("handleDescribe() error: %v", err)
	}
	if res.IsError {
		t.Fatalf("handleDescribe() failed: %s", resultText(t, res))
	}

	var sum compute.Summary
	if err := json.Unmarshal([]byte(resultText(t, res)), &sum); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if sum.Count != 8 {
		t.Errorf("Count = %d, want 8", sum.Count)
	}
	if mean, _ := sum.Mean.(float64); mean != 5 {
		t.Errorf("Mean = %v, want 5", sum.Mean)
	}
	if len(sum.Percentiles) != 5 {
		t.Errorf("len(Percentiles) = %d, want 5", len(sum.Percentiles))
	}
}

func TestParseFrontmatter(t *testing.T) {
	desc, body := parseFrontmatter([]byte("---\ndescription: hello\n---\n\nbody text\n"))
	if desc != "hello" {
		t.Errorf("description = %q, want hello", desc)
	}
	if body != "body text\n" {
		t.Errorf("body = %q", body)
	}

	desc, body = parseFrontmatter([]byte("no frontmatter"))
	if desc != "" || body != "no frontmatter" {
		t.Errorf("parseFrontmatter() = %q, %q", desc, body)
	}
}

func TestEmbeddedPrompts(t *testing.T) {
	content, err := promptFiles.ReadFile("prompts/tail-latency.md")
	if err != nil {
		t.Fatalf("embedded prompt missing: %v", err)
	}
	desc, body := parseFrontmatter(content)
	if desc == "" {
		t.Error("prompt should have a description")
	}
	if !strings.Contains(body, "percentile") {
		t.Error("prompt body should reference the percentile tool")
	}

	handler := makePromptHandler(desc, body)
	res, err := handler(context.Background(), &mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("prompt handler error: %v", err)
	}
	if len(res.Messages) != 1 || res.Description != desc {
		t.Errorf("prompt result = %+v", res)
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest() error: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if m.Name != "io.github.panbanda/pctl" || m.Version != "1.2.3" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/pctl:1.2.3" {
		t.Errorf("packages = %+v", m.Packages)
	}
}
