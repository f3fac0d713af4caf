package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/validation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the search_files tool.
// The form tags let the HTTP API bind the same request from query parameters.
type SearchArgs struct {
	Query          string   `json:"query" form:"query" validate:"required,valid_query,max=1000" jsonschema:"Words to look for. Punctuation and common stop words are ignored"`
	SearchIn       []string `json:"searchIn,omitempty" form:"searchIn" validate:"omitempty,dive,search_scope" jsonschema:"Scopes to match: filename, content, metadata (default filename and content)"`
	FileTypes      []string `json:"fileTypes,omitempty" form:"fileTypes" validate:"omitempty,dive,file_type" jsonschema:"Only files with these extensions (e.g. pdf, md)"`
	BasePath       string   `json:"basePath,omitempty" form:"basePath" validate:"store_path" jsonschema:"Folder to search below (default /)"`
	Limit          int      `json:"limit,omitempty" form:"limit" validate:"min=0,max=500" jsonschema:"Maximum number of results (default 50)"`
	IncludeContent bool     `json:"includeContent,omitempty" form:"includeContent" jsonschema:"Attach the first lines of each matching file"`
	CaseSensitive  bool     `json:"caseSensitive,omitempty" form:"caseSensitive" jsonschema:"Keep only matches with the query's exact casing"`
	QuickSearch    *bool    `json:"quickSearch,omitempty" form:"quickSearch" jsonschema:"Shallow, faster walk when searching from the root (default true)"`
	MaxDepth       int      `json:"maxDepth,omitempty" form:"maxDepth" validate:"min=0,max=50" jsonschema:"Override how many folder levels are walked"`
	MinSize        int64    `json:"minSize,omitempty" form:"minSize" validate:"min=0" jsonschema:"Minimum file size in bytes"`
	MaxSize        *int64   `json:"maxSize,omitempty" form:"maxSize" validate:"omitempty,min=0" jsonschema:"Maximum file size in bytes (0 selects empty files)"`
	ModifiedAfter  string   `json:"modifiedAfter,omitempty" form:"modifiedAfter" validate:"search_date" jsonschema:"Only files modified at or after this date (YYYY-MM-DD or RFC 3339)"`
	ModifiedBefore string   `json:"modifiedBefore,omitempty" form:"modifiedBefore" validate:"search_date" jsonschema:"Only files modified at or before this date (YYYY-MM-DD or RFC 3339)"`
}

// Options converts the arguments to engine options. List arguments also accept
// comma-separated values.
func (a SearchArgs) Options() (search.Options, error) {
	opts := search.Options{
		Query:          a.Query,
		FileTypes:      splitList(a.FileTypes),
		BasePath:       a.BasePath,
		Limit:          a.Limit,
		IncludeContent: a.IncludeContent,
		CaseSensitive:  a.CaseSensitive,
		QuickSearch:    a.QuickSearch,
		MaxDepth:       a.MaxDepth,
	}
	for _, name := range splitList(a.SearchIn) {
		scope, err := search.ParseScope(name)
		if err != nil {
			return search.Options{}, err
		}
		opts.SearchIn = append(opts.SearchIn, scope)
	}
	if a.MinSize > 0 || a.MaxSize != nil {
		opts.SizeRange = &search.SizeRange{Min: a.MinSize, Max: a.MaxSize}
	}
	if a.ModifiedAfter != "" || a.ModifiedBefore != "" {
		opts.DateRange = &search.DateRange{}
		var err error
		if a.ModifiedAfter != "" {
			if opts.DateRange.From, err = search.ParseDate(a.ModifiedAfter); err != nil {
				return search.Options{}, err
			}
		}
		if a.ModifiedBefore != "" {
			if opts.DateRange.To, err = search.ParseDate(a.ModifiedBefore); err != nil {
				return search.Options{}, err
			}
		}
	}
	return opts, opts.Validate()
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Engine    *search.Engine
	Validator *validation.Validator
	Logger    *slog.Logger
}

// Handle processes a search_files request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	if err := h.Validator.Validate(args); err != nil {
		h.Logger.Warn("search_files called with invalid arguments", "error", err)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}
	opts, err := args.Options()
	if err != nil {
		h.Logger.Warn("search_files called with invalid arguments", "error", err)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	response, err := h.Engine.Execute(ctx, opts)
	if err != nil {
		h.Logger.Error("search_files failed", "query", args.Query, "error", err)
		var searchErr *search.SearchError
		if errors.As(err, &searchErr) {
			return errorResult(fmt.Sprintf("Search failed: %s\n\nSuggestions:\n%s", searchErr.Error(), searchErr.Hint())), nil, nil
		}
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	return textResult(FormatSearchResults(response)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
