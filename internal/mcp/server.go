// ABOUTME: MCP server setup for the health bridge.
// ABOUTME: Wraps the MCP server around the core bridge services.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/report"
	"github.com/harperreed/hcbridge/internal/summary"
)

// Server wraps the MCP server with bridge service access.
type Server struct {
	mcpServer *mcp.Server
	engine    *summary.Engine
	nutrition *nutrition.Service
	reporter  *report.Reporter
}

// NewServer creates a new MCP server over the bridge services.
func NewServer(engine *summary.Engine, svc *nutrition.Service, reporter *report.Reporter) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "hcbridge",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    engine,
		nutrition: svc,
		reporter:  reporter,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
