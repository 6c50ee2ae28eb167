// Package mcp exposes a running Sampler's internal state over the
// Model Context Protocol for debugging: which sets are tracked, what
// the catalog knows, and the shape of the built schema. Grounded on
// the teacher's internal/mcp/server.go (mcp.NewTool/s.AddTool, stdio
// transport), retargeted from a one-shot diagnostic report tool set
// to introspection of a long-running sampler instance.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ovis-hpc/ldms-appsampler/internal/appsampler"
)

// Server wraps the MCP server instance bound to one Sampler.
type Server struct {
	mcpServer *server.MCPServer
	sampler   *appsampler.Sampler
}

// NewServer creates an MCP server exposing debug tools against
// sampler.
func NewServer(version string, sampler *appsampler.Sampler) *Server {
	s := server.NewMCPServer("app-sampler", version, server.WithLogging())
	srv := &Server{mcpServer: s, sampler: sampler}
	srv.registerTools()
	return srv
}

// Start runs the server in stdio mode until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_tracked_sets",
			mcp.WithDescription("Report how many process sets are currently tracked and how many procfile handlers run each tick."),
		),
		s.handleListTrackedSets,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("describe_catalog",
			mcp.WithDescription("List every metric name the catalog knows, flagging which are currently enabled for this instance."),
		),
		s.handleDescribeCatalog,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("schema_summary",
			mcp.WithDescription("Describe the built schema: field order, names, and types."),
		),
		s.handleSchemaSummary,
	)
}
