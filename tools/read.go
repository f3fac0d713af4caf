package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/davsearch-mcp/extract"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadArgs defines the input parameters for the read_file tool.
type ReadArgs struct {
	Path   string `json:"path" jsonschema:"Store path of the file to read (e.g. /Documents/notes.txt)"`
	Offset int    `json:"offset,omitempty" jsonschema:"1-based line number to start from (default 1)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of lines to return (default all)"`
}

// ReadHandler holds the dependencies for the read tool.
type ReadHandler struct {
	Store     store.Store
	Extractor *extract.Extractor
	Logger    *slog.Logger
}

// Handle processes a read_file request. Only textual files within the size limit are returned.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("read_file called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	entry, err := h.Store.Stat(ctx, args.Path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Logger.Info("read_file not found", "path", args.Path)
			return errorResult(fmt.Sprintf("File not found: %s", store.CleanPath(args.Path))), nil, nil
		}
		h.Logger.Error("read_file stat failed", "path", args.Path, "error", err)
		return errorResult(fmt.Sprintf("Read error: %v", err)), nil, nil
	}
	if entry.IsDirectory {
		return errorResult(fmt.Sprintf("%s is a folder; use list_files to see its contents", entry.Path)), nil, nil
	}

	file := index.NewFileMetadata(*entry, 0)
	if file.Size > h.Extractor.MaxFileSize() {
		return errorResult(fmt.Sprintf("%s is %s, above the %s read limit",
			file.Path, formatFileSize(file.Size), formatFileSize(h.Extractor.MaxFileSize()))), nil, nil
	}

	content, err := h.Extractor.Raw(ctx, file)
	switch {
	case errors.Is(err, extract.ErrNoContent):
		h.Logger.Info("read_file has no text", "path", file.Path, "mimeType", file.MimeType)
		return errorResult(fmt.Sprintf("%s has no readable text (%s)", file.Path, describe(file))), nil, nil
	case err != nil:
		h.Logger.Error("read_file failed", "path", file.Path, "error", err)
		return errorResult(fmt.Sprintf("Read error: %v", err)), nil, nil
	}

	h.Logger.Info("read_file", "path", file.Path, "bytes", file.Size, "elapsed", time.Since(start))
	return textResult(FormatFileContent(file.Path, strings.TrimSuffix(content, "\n"), args.Offset, args.Limit)), nil, nil
}
