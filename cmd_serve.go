package main

import (
	"github.com/lexandro/davsearch-mcp/api"
	"github.com/lexandro/davsearch-mcp/config"
	"github.com/lexandro/davsearch-mcp/server"
	"github.com/lexandro/davsearch-mcp/watcher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server. By default it speaks JSON-RPC over stdio, which is what
MCP clients launch. With --http the server listens on the given address and exposes:

  GET  /health          liveness
  GET  /search          search (query parameters mirror the search_files tool)
  POST /index/refresh   drop cached listings, {"path": "/Documents"} or {} for all
  GET  /index/status    cache statistics
  *    /mcp             streamable HTTP MCP endpoint

Examples:
  davsearch-mcp serve
  davsearch-mcp serve --http :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "listen address for HTTP mode, e.g. :8080 (default: stdio)")
	cobra.CheckErr(v.BindPFlag(config.KeyHTTPAddr, serveCmd.Flags().Lookup("http")))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if a.local != nil && a.cfg.Local.Watch {
		fileWatcher, err := watcher.New(a.local, a.matcher, a.engine, a.logger)
		if err != nil {
			a.logger.Warn("failed to start file watcher, continuing with TTL expiry only", "error", err)
		} else {
			go fileWatcher.Run(ctx)
		}
	}

	mcpServer := a.mcpServer()

	if addr := a.cfg.HTTPAddr; addr != "" {
		router := api.NewRouter(api.Dependencies{
			Engine:    a.engine,
			Validator: a.validator,
			MCP:       server.HTTPHandler(mcpServer),
			Logger:    a.logger,
		})
		cmd.PrintErrf("davsearch-mcp listening on http://%s\n", addr)
		return api.Run(ctx, addr, router, a.logger)
	}

	a.logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		a.logger.Error("MCP server error", "error", err)
		return err
	}
	return nil
}
