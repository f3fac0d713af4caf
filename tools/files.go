package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/davsearch-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the list_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob pattern relative to basePath (e.g. **/*.pdf or Invoices/*.xlsx). Default **"`
	BasePath   string `json:"basePath,omitempty" jsonschema:"Folder to list below (default /)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Indexer *index.Indexer
	Logger  *slog.Logger
}

// Handle processes a list_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	pattern := args.Pattern
	if pattern == "" {
		pattern = "**"
	}
	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	fileIndex, err := h.Indexer.GetIndex(ctx, index.Request{BasePath: args.BasePath, Quick: true})
	if err != nil {
		h.Logger.Error("list_files failed", "basePath", args.BasePath, "error", err)
		return errorResult(fmt.Sprintf("Listing error: %v", err)), nil, nil
	}

	files, err := fileIndex.Glob(pattern, maxResults)
	if err != nil {
		h.Logger.Warn("list_files called with invalid pattern", "pattern", pattern, "error", err)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	h.Logger.Info("list_files",
		"pattern", pattern,
		"basePath", fileIndex.BasePath,
		"results", len(files),
		"elapsed", time.Since(start),
	)

	return textResult(FormatFileResults(files, args.NameOnly, fileIndex.Truncated)), nil, nil
}
