package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/actionchain/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes chain execution and validation as MCP tools for AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd, nil)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		svc, err := newServices(opts)
		if err != nil {
			return err
		}
		defer svc.close()

		serverOpts := []mcp.Option{
			mcp.WithTransactionManager(svc.manager),
			mcp.WithLogger(opts.Logger),
		}
		if svc.chains != nil {
			serverOpts = append(serverOpts, mcp.WithRepository(svc.chains))
		}
		srv := mcp.NewServer(svc.registry, serverOpts...)

		switch transport {
		case "stdio":
			// JSON-RPC owns Stdout.
			log.SetOutput(os.Stderr)
			opts.Logger.Info("Starting actionchain MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			opts.Logger.Info("Starting actionchain MCP server (SSE)", "port", port)
			ctx, stop := signalContext()
			defer stop()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			opts.Logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
