package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"embedctl/internal/mcpserver"
	"embedctl/internal/provision"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve Embeddable tools to AI assistants over MCP (stdio)",
		Long: `Runs a Model Context Protocol server on stdin/stdout using the stored
credential. It exposes tools to list connections, environments and
embeddables, test a connection, and generate security tokens.

Configure it in your assistant, for example:

  {"mcpServers": {"embed": {"command": "embed", "args": ["mcp-server"]}}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Tools never prompt, and stdout carries only protocol messages.
			orch := provision.New(application.Store(),
				provision.WithClientOptions(application.ClientOptions()...),
			)
			srv := mcpserver.New(orch, rootCmd.Version)
			return srv.Serve(commandContext(cmd), cmd.InOrStdin(), os.Stdout)
		},
	}
}
