package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RefreshArgs defines the input parameters for the refresh_index tool.
type RefreshArgs struct {
	Path string `json:"path,omitempty" jsonschema:"Changed file or folder. Omit to drop every cache"`
}

// RefreshHandler holds the dependencies for the refresh tool.
type RefreshHandler struct {
	Engine *search.Engine
	Logger *slog.Logger
}

// Handle processes a refresh_index request. Caches are rebuilt lazily by the next search.
func (h *RefreshHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RefreshArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		h.Engine.ClearCaches()
		h.Logger.Info("refresh_index", "scope", "all")
		return textResult("refreshed: all caches cleared; the next search re-walks the store"), nil, nil
	}

	storePath := store.CleanPath(args.Path)
	h.Engine.Invalidate(storePath)
	h.Logger.Info("refresh_index", "path", storePath)
	return textResult(fmt.Sprintf("refreshed: %s; cached listings and content below it will be re-read", storePath)), nil, nil
}
