package main

import (
	"errors"
	"fmt"

	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/tools"
	"github.com/spf13/cobra"
)

var searchArgs tools.SearchArgs

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one search against the configured store and print the results",
	Example: `  davsearch-mcp search "quarterly report" --type pdf,docx
  davsearch-mcp search invoice --path /Documents/Taxes --in filename,metadata`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	flags := searchCmd.Flags()
	flags.StringSliceVar(&searchArgs.SearchIn, "in", nil, "scopes: filename, content, metadata")
	flags.StringSliceVar(&searchArgs.FileTypes, "type", nil, "file extensions to keep, e.g. pdf,md")
	flags.StringVar(&searchArgs.BasePath, "path", "/", "folder to search below")
	flags.IntVarP(&searchArgs.Limit, "limit", "n", 0, "maximum number of results (default 50)")
	flags.BoolVar(&searchArgs.IncludeContent, "content", false, "show the first lines of matching files")
	flags.BoolVar(&searchArgs.CaseSensitive, "case-sensitive", false, "keep only matches with the query's exact casing")
	flags.IntVar(&searchArgs.MaxDepth, "depth", 0, "override how many folder levels are walked")
	flags.StringVar(&searchArgs.ModifiedAfter, "after", "", "modified at or after (YYYY-MM-DD)")
	flags.StringVar(&searchArgs.ModifiedBefore, "before", "", "modified at or before (YYYY-MM-DD)")
	flags.Bool("deep", false, "walk deeper from the root instead of the quick shallow walk")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	request := searchArgs
	request.Query = args[0]
	if deep, _ := cmd.Flags().GetBool("deep"); deep {
		quick := false
		request.QuickSearch = &quick
	}

	if err := a.validator.Validate(request); err != nil {
		return err
	}
	opts, err := request.Options()
	if err != nil {
		return err
	}

	response, err := a.engine.Execute(cmd.Context(), opts)
	if err != nil {
		var searchErr *search.SearchError
		if errors.As(err, &searchErr) {
			return fmt.Errorf("%w\nSuggestions:\n%s", err, searchErr.Hint())
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tools.FormatSearchResults(response))
	return nil
}
