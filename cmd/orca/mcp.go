package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/orca/internal/cli"
	"github.com/aretw0/orca/internal/logging"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the order flow as MCP tools, and the catalog and sessions as
resources, so agents can take orders.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		level, _ := logging.ParseLevel(cfg.LogLevel)
		mcpLogger := logging.NewWithWriter(os.Stderr, level)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.ServeMCP(sigCtx, cfg, mcpLogger, transport, addr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "localhost:8090", "Address to listen on (only for SSE)")
}
