package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/acheong08/threatlens/internal/config"
	mcpadapter "github.com/acheong08/threatlens/internal/mcp"
	tlserver "github.com/acheong08/threatlens/internal/server"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the ThreatLens MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start ThreatLens MCP server (stdio)",
		Long:  "Start the ThreatLens MCP server using stdio transport. This lets AI assistants submit code, packages and URLs for analysis.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			pipeline := tlserver.NewPipeline(newPreprocessors(cfg), newAnalyzer(cfg))
			s := mcpadapter.NewThreatLensMCPServer(pipeline, version)
			return server.ServeStdio(s)
		},
	}
}
