package search

import (
	"time"

	"github.com/lexandro/davsearch-mcp/index"
)

// Result is one ranked match. A result set holds at most one Result per file path.
type Result struct {
	File           *index.FileMetadata
	MatchType      Scope
	Score          float64  // 0 to 100
	Highlights     []string // Matched substrings in their original casing, deduplicated
	Context        string   // Snippet around the match, or the path for filename matches
	ContentPreview string   // First lines of content, when requested
}

// Response is a full search outcome.
type Response struct {
	Results   []Result
	Terms     []string
	Fallback  bool // Served by the non-recursive fallback
	Cached    bool
	Elapsed   time.Duration
	RequestID string
}

func cloneResults(results []Result) []Result {
	out := make([]Result, len(results))
	for i, result := range results {
		out[i] = result
		out[i].Highlights = append([]string(nil), result.Highlights...)
	}
	return out
}
