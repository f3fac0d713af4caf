package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexandro/davsearch-mcp/config"
	"github.com/lexandro/davsearch-mcp/server"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string

	// v collects defaults, config file, environment and bound flags.
	v = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "davsearch-mcp",
	Short: "Search a WebDAV file store by name, content and metadata",
	Long: `davsearch-mcp indexes a WebDAV file store (Nextcloud, ownCloud and similar) on demand
and serves ranked file search over MCP, HTTP or the command line.

Configuration is read from davsearch.yaml (or --config), a .env file and
DAVSEARCH_* environment variables, e.g. DAVSEARCH_WEBDAV_URL.`,
	Version:       server.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return config.LoadDotEnv(envFile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./davsearch.yaml or ~/.config/davsearch/davsearch.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("log-level", "", "log level: debug|info|warn|error")
	flags.String("log-file", "", "log file path (default: davsearch-mcp.log)")

	cobra.CheckErr(v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(v.BindPFlag(config.KeyLogFile, flags.Lookup("log-file")))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
