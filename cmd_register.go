package main

import (
	"fmt"
	"os"

	"github.com/lexandro/davsearch-mcp/register"
	"github.com/spf13/cobra"
)

var registerEnv []string

var registerCmd = &cobra.Command{
	Use:   "register project|user [directory] [-- server args]",
	Short: "Add this server to an MCP client configuration",
	Long: `Add this server to an MCP client configuration.

  project  writes <directory>/.mcp.json (default directory: .)
  user     writes ~/.claude.json

Arguments after -- are passed to the server; "serve" is used when none are given.
Use --env to store settings such as the WebDAV URL in the entry.`,
	Example: `  davsearch-mcp register project
  davsearch-mcp register user --env DAVSEARCH_WEBDAV_URL=https://cloud.example.com/remote.php/dav/files/alice
  davsearch-mcp register project ./notes -- serve --log-level debug`,
	Args: cobra.ArbitraryArgs,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringArrayVarP(&registerEnv, "env", "e", nil, "KEY=VALUE environment entry (repeatable)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	positional, serverArgs := register.SplitArgs(args, cmd.ArgsLenAtDash())
	if len(positional) == 0 || len(positional) > 2 {
		return fmt.Errorf("expected a scope (%s or %s) and an optional directory", register.ScopeProject, register.ScopeUser)
	}
	if len(serverArgs) == 0 {
		serverArgs = []string{"serve"}
	}

	opts := register.Options{
		ServerName: register.DeriveServerName(os.Args[0]),
		Scope:      positional[0],
		ServerArgs: serverArgs,
		Env:        registerEnv,
	}
	if len(positional) > 1 {
		if opts.Scope != register.ScopeProject {
			return fmt.Errorf("a directory is only accepted for the %s scope", register.ScopeProject)
		}
		opts.Directory = positional[1]
	}

	configPath, err := register.Run(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", opts.ServerName, configPath)
	return nil
}
