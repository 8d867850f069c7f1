package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Port range scanned by --port -1.
const (
	mcpPortRangeStart = 8080
	mcpPortRangeEnd   = 8180
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the search_logs, inference_tree, context_tree and
context_versions tools and the agentops://history resource.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead; --port -1 picks a free port between 8080 and 8180.

Examples:
  # Stdio mode (default)
  agentops mcp serve

  # HTTP mode
  agentops mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "agentops": {
        "command": "/path/to/agentops",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio, -1 = first free port)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(buildMCPPorts())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if configWatcher != nil {
		go func() {
			err := configWatcher(ctx, func(err error) {
				if err != nil {
					logger.Warn("config reload failed: %v", err)
					return
				}
				logger.Info("configuration reloaded")
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	if port < 0 {
		port, err = services.FindAvailablePort(mcpPortRangeStart, mcpPortRangeEnd)
		if err != nil {
			return fmt.Errorf("finding free port: %w", err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

func buildMCPPorts() *mcp.Ports {
	return &mcp.Ports{
		Logs:      logService,
		Inference: inferenceService,
		Contexts:  contextService,
		History:   historyService,
	}
}
