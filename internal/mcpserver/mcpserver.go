package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/pctl/internal/service/compute"
)

// Server wraps the MCP server and registers the pctl tools.
type Server struct {
	server  *mcp.Server
	compute *compute.Service
}

// NewServer creates a new MCP server backed by svc. A nil svc uses the
// default configuration.
func NewServer(version string, svc *compute.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = compute.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pctl",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, compute: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "percentile",
		Description: describePercentile(),
	}, s.handlePercentile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe",
		Description: describeDescribe(),
	}, s.handleDescribe)
}
