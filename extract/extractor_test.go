package extract

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testModified = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

// fileFor returns the index record for a path stored in m.
func fileFor(t *testing.T, m *store.MemoryStore, storePath string) *index.FileMetadata {
	t.Helper()
	entry, err := m.Stat(context.Background(), storePath)
	require.NoError(t, err)
	return index.NewFileMetadata(*entry, 0)
}

func Test_Extractor_ReadsTextFiles(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/notes.txt", []byte("budget   review\r\n\r\n  next\tsteps\x07"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	text := e.ExtractContent(context.Background(), fileFor(t, m, "/notes.txt"))
	assert.Equal("budget review\nnext steps", text)
}

func Test_Extractor_OversizedFileNeverRead(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddSizedFile("/huge.log", 11*1024*1024, "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	file := fileFor(t, m, "/huge.log")
	text := e.ExtractContent(context.Background(), file)

	assert.Equal(MetadataText(file), text)
	assert.Equal(0, m.ReadCalls())
}

func Test_Extractor_SizeBoundaryIsInclusive(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/exact.txt", []byte("0123456789abcdef"), "text/plain", testModified)
	m.AddFile("/over.txt", []byte("0123456789abcdefg"), "text/plain", testModified)

	e := NewExtractor(m, Options{MaxFileSize: 16}, testLogger())

	assert.Equal("0123456789abcdef", e.ExtractContent(context.Background(), fileFor(t, m, "/exact.txt")))
	assert.Equal(1, m.ReadCalls())

	over := fileFor(t, m, "/over.txt")
	assert.Equal(MetadataText(over), e.ExtractContent(context.Background(), over))
	assert.Equal(1, m.ReadCalls())
}

func Test_Extractor_MetadataOnlyCategories(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/Documents/budget-2024.pdf", []byte("%PDF-1.7 budget"), "application/pdf", testModified)
	m.AddFile("/Photos/beach.jpg", []byte("jpeg"), "", testModified)
	m.AddFile("/data.bin", []byte("opaque"), "", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	for _, p := range []string{"/Documents/budget-2024.pdf", "/Photos/beach.jpg", "/data.bin"} {
		file := fileFor(t, m, p)
		assert.Equal(MetadataText(file), e.ExtractContent(context.Background(), file), p)
	}
	assert.Equal(0, m.ReadCalls())
}

func Test_Extractor_MimeTypeOverridesExtension(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/report.bin", []byte("plain words"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	assert.Equal("plain words", e.ExtractContent(context.Background(), fileFor(t, m, "/report.bin")))
}

func Test_Extractor_BinaryContentDegrades(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/fake.txt", []byte("abc\x00def"), "text/plain", testModified)
	m.AddFile("/disguised.txt", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	for _, p := range []string{"/fake.txt", "/disguised.txt"} {
		file := fileFor(t, m, p)
		assert.Equal(MetadataText(file), e.ExtractContent(context.Background(), file), p)
	}
}

func Test_Extractor_ReadFailureDegrades(t *testing.T) {
	m := store.NewMemoryStore()
	file := index.NewFileMetadata(store.Entry{Path: "/gone.md", Size: 10, LastModified: testModified}, 0)

	e := NewExtractor(m, Options{}, testLogger())
	require.Equal(t, MetadataText(file), e.ExtractContent(context.Background(), file))
}

func Test_Extractor_TruncatesLongContent(t *testing.T) {
	m := store.NewMemoryStore()
	m.AddFile("/long.txt", []byte(strings.Repeat("a", 500)), "text/plain", testModified)

	e := NewExtractor(m, Options{MaxContentChars: 100}, testLogger())
	require.Len(t, e.ExtractContent(context.Background(), fileFor(t, m, "/long.txt")), 100)
}

func Test_Extractor_CachesContent(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/a.txt", []byte("alpha"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	file := fileFor(t, m, "/a.txt")
	e.ExtractContent(context.Background(), file)
	e.ExtractContent(context.Background(), file)

	assert.Equal(1, m.ReadCalls())
	stats := e.Stats()
	assert.Equal(1, stats.Entries)
	assert.Equal(int64(1), stats.Hits)
}

func Test_Extractor_ModifiedFileIsReRead(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/a.txt", []byte("alpha"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	assert.Equal("alpha", e.ExtractContent(context.Background(), fileFor(t, m, "/a.txt")))

	m.AddFile("/a.txt", []byte("omega"), "text/plain", testModified.Add(time.Minute))
	assert.Equal("omega", e.ExtractContent(context.Background(), fileFor(t, m, "/a.txt")))
	assert.Equal(2, m.ReadCalls())
}

func Test_Extractor_CacheTTL(t *testing.T) {
	m := store.NewMemoryStore()
	m.AddFile("/a.txt", []byte("alpha"), "text/plain", testModified)

	e := NewExtractor(m, Options{CacheTTL: 20 * time.Millisecond}, testLogger())
	file := fileFor(t, m, "/a.txt")
	e.ExtractContent(context.Background(), file)
	time.Sleep(30 * time.Millisecond)
	e.ExtractContent(context.Background(), file)

	require.Equal(t, 2, m.ReadCalls())
}

func Test_Extractor_InvalidateSubtree(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/docs/a.txt", []byte("alpha"), "text/plain", testModified)
	m.AddFile("/docs/b.txt", []byte("beta"), "text/plain", testModified)
	m.AddFile("/other/c.txt", []byte("gamma"), "text/plain", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	for _, p := range []string{"/docs/a.txt", "/docs/b.txt", "/other/c.txt"} {
		e.ExtractContent(context.Background(), fileFor(t, m, p))
	}

	assert.Equal(2, e.Invalidate("/docs"))
	assert.Equal(1, e.Stats().Entries)

	e.Clear()
	assert.Equal(0, e.Stats().Entries)
	assert.Equal(int64(0), e.Stats().Bytes)
}

func Test_Extractor_ContentPreview(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/notes.md", []byte("# Budget\n\nline two\nline three\nline four"), "text/markdown", testModified)
	m.AddFile("/scan.pdf", []byte("%PDF"), "application/pdf", testModified)

	e := NewExtractor(m, Options{}, testLogger())
	assert.Equal("# Budget\nline two\nline three", e.ContentPreview(context.Background(), fileFor(t, m, "/notes.md"), 3))
	assert.Equal("", e.ContentPreview(context.Background(), fileFor(t, m, "/scan.pdf"), 3))
	assert.Equal("", e.ContentPreview(context.Background(), fileFor(t, m, "/"), 3))
}

func Test_Extractor_RawKeepsLayout(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/main.go", []byte("func main() {\r\n\tprintln()\r\n\r\n}\n"), "text/x-go", testModified)
	m.AddFile("/photo.txt", append([]byte("abc"), 0x00, 0x01), "text/plain", testModified)
	m.AddSizedFile("/big.txt", 11*1024*1024, "text/plain", testModified)
	m.AddFile("/scan.pdf", []byte("%PDF-1.7"), "application/pdf", testModified)

	e := NewExtractor(m, Options{}, testLogger())

	raw, err := e.Raw(context.Background(), fileFor(t, m, "/main.go"))
	assert.NoError(err)
	assert.Equal("func main() {\n\tprintln()\n\n}\n", raw)
	assert.Equal(1, m.ReadCalls())

	for _, storePath := range []string{"/photo.txt", "/big.txt", "/scan.pdf"} {
		_, err := e.Raw(context.Background(), fileFor(t, m, storePath))
		assert.ErrorIs(err, ErrNoContent, storePath)
	}
	assert.Equal(2, m.ReadCalls())
}
