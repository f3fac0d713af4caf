// Package extract turns store files into bounded, cacheable text for matching.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lexandro/davsearch-mcp/filetype"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/store"
)

// ErrNoContent is returned by Raw for files that have no readable text.
var ErrNoContent = errors.New("no readable text content")

// Options configures an Extractor. Zero values take the defaults noted per field.
type Options struct {
	MaxFileSize     int64         // Files above this are never read (10MB)
	CacheTTL        time.Duration // 5m
	CacheMaxBytes   int64         // 100MB
	MaxContentChars int           // 100000
}

func (o *Options) applyDefaults() {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = 10 * 1024 * 1024
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheMaxBytes <= 0 {
		o.CacheMaxBytes = 100 * 1024 * 1024
	}
	if o.MaxContentChars <= 0 {
		o.MaxContentChars = 100000
	}
}

// Extractor produces searchable text for files. Extraction never fails: files that
// are oversized, non-textual or unreadable are represented by their metadata text.
type Extractor struct {
	store   store.Store
	options Options
	logger  *slog.Logger
	cache   *contentCache
}

func NewExtractor(backing store.Store, options Options, logger *slog.Logger) *Extractor {
	options.applyDefaults()
	return &Extractor{
		store:   backing,
		options: options,
		logger:  logger,
		cache:   newContentCache(options.CacheTTL, options.CacheMaxBytes),
	}
}

// MaxFileSize returns the effective read ceiling.
func (e *Extractor) MaxFileSize() int64 {
	return e.options.MaxFileSize
}

// CanExtract reports whether a file is eligible for real content extraction.
// The size boundary is inclusive: a file of exactly MaxFileSize bytes is read.
func (e *Extractor) CanExtract(file *index.FileMetadata) bool {
	return !file.IsDirectory && file.Size <= e.options.MaxFileSize && file.Category().Extractable()
}

// ExtractContent returns the file's normalized text, or its metadata text when
// the content cannot or should not be read.
func (e *Extractor) ExtractContent(ctx context.Context, file *index.FileMetadata) string {
	text, _ := e.extract(ctx, file)
	return text
}

// Raw returns the file's text as stored, indentation and blank lines included, for display.
// Only files CanExtract accepts are read; binary or oversized data yields ErrNoContent.
func (e *Extractor) Raw(ctx context.Context, file *index.FileMetadata) (string, error) {
	if !e.CanExtract(file) {
		return "", fmt.Errorf("%s: %w", file.Path, ErrNoContent)
	}
	data, err := e.store.ReadFile(ctx, file.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file.Path, err)
	}
	if int64(len(data)) > e.options.MaxFileSize || !looksTextual(data) {
		return "", fmt.Errorf("%s: %w", file.Path, ErrNoContent)
	}
	return strings.ToValidUTF8(strings.ReplaceAll(string(data), "\r\n", "\n"), "\uFFFD"), nil
}

// ContentPreview returns the first maxLines lines of the file's real content.
// Returns "" for files without readable content.
func (e *Extractor) ContentPreview(ctx context.Context, file *index.FileMetadata, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	text, fromContent := e.extract(ctx, file)
	if !fromContent {
		return ""
	}

	lines := strings.SplitN(text, "\n", maxLines+1)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// extract reports whether the returned text came from the file content (true)
// or from its metadata (false).
func (e *Extractor) extract(ctx context.Context, file *index.FileMetadata) (string, bool) {
	if !e.CanExtract(file) {
		return MetadataText(file), false
	}

	if text, ok := e.cache.get(file.Path, file.LastModified, file.Size); ok {
		return text, true
	}

	// Bounded read guards against stores that under-report sizes
	data, err := e.store.ReadFileLimited(ctx, file.Path, e.options.MaxFileSize)
	if err != nil {
		e.logger.Debug("content read failed, using metadata", "path", file.Path, "error", err)
		return MetadataText(file), false
	}
	if !looksTextual(data) {
		e.logger.Debug("binary content, using metadata", "path", file.Path)
		return MetadataText(file), false
	}

	text := Normalize(string(data), e.options.MaxContentChars)
	if !e.cache.put(file.Path, text, file.LastModified, file.Size) {
		e.logger.Debug("content too large to cache", "path", file.Path, "bytes", len(text))
	}
	return text, true
}

// looksTextual rejects NUL-bearing data and data whose signature says document or media,
// e.g. a PDF uploaded with a .txt name.
func looksTextual(data []byte) bool {
	if filetype.IsBinaryContent(data) {
		return false
	}
	switch filetype.Classify(mimetype.Detect(data).String(), "") {
	case filetype.Document, filetype.Media:
		return false
	}
	return true
}

// Invalidate drops cached content for a path and everything below it.
func (e *Extractor) Invalidate(storePath string) int {
	return e.cache.removeMatching(func(cachedPath string) bool {
		return store.HasPathPrefix(cachedPath, storePath)
	})
}

// Clear empties the content cache.
func (e *Extractor) Clear() {
	e.cache.clear()
}

func (e *Extractor) Stats() CacheStats {
	return e.cache.stats()
}
