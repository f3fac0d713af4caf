package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the index_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Engine    *search.Engine
	StartTime time.Time
	Backend   string // e.g. "webdav https://cloud.example.com/remote.php/dav/files/alice"
	Logger    *slog.Logger
}

// Handle processes an index_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	stats := h.Engine.Stats()
	uptime := time.Since(h.StartTime)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	h.Logger.Info("index_status",
		"indexes", len(stats.Indexes),
		"contentEntries", stats.Content.Entries,
		"resultEntries", stats.ResultCacheEntries,
		"memory", mem.Alloc,
		"uptime", uptime,
	)

	var out strings.Builder
	fmt.Fprintf(&out, "=== davsearch-mcp Status ===\n\nStore: %s\nUptime: %s\nMemory usage: %s (heap: %s)\n",
		h.Backend, formatDuration(uptime), formatFileSize(int64(mem.Alloc)), formatFileSize(int64(mem.HeapAlloc)))
	writeIndexStats(&out, stats.Indexes)
	writeCacheStats(&out, stats)
	return textResult(out.String()), nil, nil
}

func writeIndexStats(out *strings.Builder, entries []index.CacheEntry) {
	fmt.Fprintf(out, "\nCached indexes: %d\n", len(entries))
	for _, entry := range entries {
		flags := ""
		if entry.Truncated {
			flags = ", truncated"
		}
		fmt.Fprintf(out, "  %-30s %d files, %d folders, depth %d, built %s%s\n",
			entry.BasePath, entry.FileCount, entry.DirCount, entry.MaxDepth, humanize.Time(entry.LastUpdated), flags)
	}
}

func writeCacheStats(out *strings.Builder, stats search.Stats) {
	c := stats.Content
	fmt.Fprintf(out, "\nContent cache: %d files, %s of %s (hits %d, misses %d, evictions %d)\n",
		c.Entries, formatFileSize(c.Bytes), formatFileSize(c.MaxBytes), c.Hits, c.Misses, c.Evictions)
	fmt.Fprintf(out, "Result cache: %d queries\n", stats.ResultCacheEntries)
}

// formatDuration renders whole seconds as 42s, 5m30s or 1h30m.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
