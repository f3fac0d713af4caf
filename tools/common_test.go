package tools

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lexandro/davsearch-mcp/extract"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/lexandro/davsearch-mcp/validation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testModified = time.Now().Add(-2 * time.Hour)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testDeps struct {
	store     *store.MemoryStore
	indexer   *index.Indexer
	extractor *extract.Extractor
	engine    *search.Engine
	validator *validation.Validator
}

// newTestDeps wires an engine over a small in-memory tree.
func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	m := store.NewMemoryStore()
	m.AddFile("/Documents/notes.txt", []byte("budget review\nagenda\nactions"), "text/plain", testModified)
	m.AddSizedFile("/Documents/budget-2024.pdf", 500*1024, "application/pdf", testModified)
	m.AddFile("/Documents/Taxes/receipt.md", []byte("# Receipt\npaid"), "text/markdown", testModified)
	m.AddSizedFile("/Videos/holiday.mp4", 20*1024*1024, "video/mp4", testModified)

	indexer := index.NewIndexer(m, index.Options{}, testLogger())
	extractor := extract.NewExtractor(m, extract.Options{}, testLogger())
	validator, err := validation.New(testLogger())
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return &testDeps{
		store:     m,
		indexer:   indexer,
		extractor: extractor,
		engine:    search.NewEngine(indexer, extractor, search.Config{}, testLogger()),
		validator: validator,
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
