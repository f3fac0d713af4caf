// Package store defines the remote file store contract consumed by the indexer
// and extractor, together with its WebDAV, local-directory and in-memory backends.
package store

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a path does not exist in the store.
var ErrNotFound = errors.New("not found")

// Entry is one child returned by a directory listing or a Stat probe.
type Entry struct {
	Path         string // Absolute store path, forward slashes, no trailing slash
	Name         string
	Size         int64
	LastModified time.Time
	ContentType  string
	IsDirectory  bool
}

// Store is the read-only view of the backing file store.
type Store interface {
	// ListDirectory returns the immediate children of dirPath, never the directory itself.
	ListDirectory(ctx context.Context, dirPath string) ([]Entry, error)
	ReadFile(ctx context.Context, filePath string) ([]byte, error)
	// ReadFileLimited returns at most limit bytes from the start of the file.
	ReadFileLimited(ctx context.Context, filePath string, limit int64) ([]byte, error)
	Stat(ctx context.Context, filePath string) (*Entry, error)
}

// CleanPath normalizes a store path: leading slash, no trailing slash, no dot segments.
// The empty string maps to the root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// IsRoot reports whether p refers to the store root.
func IsRoot(p string) bool {
	return CleanPath(p) == "/"
}

// HasPathPrefix reports whether p equals prefix or lies below it, comparing whole segments.
func HasPathPrefix(p string, prefix string) bool {
	p = CleanPath(p)
	prefix = CleanPath(prefix)
	if prefix == "/" || p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}
