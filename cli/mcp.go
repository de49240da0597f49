// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, a *agenda.Agenda, version string, logger *zap.Logger) error {
	logger.Info("starting MCP server", zap.String("scope", a.Store().Scope()))

	server := handlers.NewServer(a, version)

	// Run server on stdio transport
	return server.Run(ctx, &mcp.StdioTransport{})
}
