package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"embedctl/internal/provision"
	"embedctl/pkg/logging"
)

// Server exposes the CLI's read and token operations as MCP tools.
type Server struct {
	orch *provision.Orchestrator
	mcp  *server.MCPServer
}

// New creates a Server answering through orch. orch must not have a
// prompter; tools never ask questions.
func New(orch *provision.Orchestrator, version string) *Server {
	s := &Server{orch: orch}
	s.mcp = server.NewMCPServer(
		"embed",
		version,
		server.WithToolCapabilities(true),
	)
	s.mcp.AddTools(s.tools()...)
	return s
}

// Serve speaks MCP over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logging.Info("mcp", "Serving %d tools over stdio", len(s.tools()))
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}
