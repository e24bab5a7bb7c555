package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names
const (
	ToolListConnections  = "list_connections"
	ToolListEnvironments = "list_environments"
	ToolListEmbeddables  = "list_embeddables"
	ToolTestConnection   = "test_connection"
	ToolGenerateToken    = "generate_token"
)

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolListConnections,
				mcp.WithDescription("List the database connections of the Embeddable workspace"),
			),
			Handler: s.handleListConnections,
		},
		{
			Tool: mcp.NewTool(ToolListEnvironments,
				mcp.WithDescription("List environments and their data source to connection mappings"),
			),
			Handler: s.handleListEnvironments,
		},
		{
			Tool: mcp.NewTool(ToolListEmbeddables,
				mcp.WithDescription("List embeddables with their last published date"),
			),
			Handler: s.handleListEmbeddables,
		},
		{
			Tool: mcp.NewTool(ToolTestConnection,
				mcp.WithDescription("Test a saved database connection and explain a failure"),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Name or ID of the connection to test"),
				),
			),
			Handler: s.handleTestConnection,
		},
		{
			Tool: mcp.NewTool(ToolGenerateToken,
				mcp.WithDescription("Generate a security token for embedding a dashboard"),
				mcp.WithString("embeddable_id",
					mcp.Required(),
					mcp.Description("ID of the embeddable"),
				),
				mcp.WithString("environment",
					mcp.Description("Environment ID; defaults to the configured default environment"),
				),
				mcp.WithString("expiry",
					mcp.Description("Token lifetime such as 90m, 2h or 7d (default 24h)"),
				),
				mcp.WithString("user_id",
					mcp.Description("User the token is issued for"),
				),
				mcp.WithString("security_context",
					mcp.Description("Row-level security filters as a JSON object"),
				),
			),
			Handler: s.handleGenerateToken,
		},
	}
}
