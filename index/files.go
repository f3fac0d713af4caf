package index

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/davsearch-mcp/store"
)

// FileIndex is an immutable snapshot of a subtree. Files are sorted by path;
// callers must not modify the slice or the records it points to.
type FileIndex struct {
	BasePath       string
	LastUpdated    time.Time
	Files          []*FileMetadata
	TotalSize      int64
	DirectoryCount int
	FileCount      int
	MaxDepth       int  // Depth the walk was allowed to reach
	Truncated      bool // The walk hit the entry ceiling

	byPath map[string]*FileMetadata
}

// NewFileIndex sorts files by path, drops duplicate paths and computes the totals.
func NewFileIndex(basePath string, files []*FileMetadata, maxDepth int) *FileIndex {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	fi := &FileIndex{
		BasePath:    store.CleanPath(basePath),
		LastUpdated: time.Now(),
		Files:       make([]*FileMetadata, 0, len(files)),
		MaxDepth:    maxDepth,
		byPath:      make(map[string]*FileMetadata, len(files)),
	}
	for _, file := range files {
		if _, exists := fi.byPath[file.Path]; exists {
			continue
		}
		fi.byPath[file.Path] = file
		fi.Files = append(fi.Files, file)

		if file.IsDirectory {
			fi.DirectoryCount++
			continue
		}
		fi.FileCount++
		fi.TotalSize += file.Size
	}
	return fi
}

// Get returns the record for an absolute store path, or nil.
func (fi *FileIndex) Get(storePath string) *FileMetadata {
	return fi.byPath[store.CleanPath(storePath)]
}

// Age returns how long ago the snapshot was taken.
func (fi *FileIndex) Age() time.Duration {
	return time.Since(fi.LastUpdated)
}

// Glob returns files (not directories) matching a doublestar pattern.
// The pattern is matched against paths relative to the base path.
func (fi *FileIndex) Glob(pattern string, maxResults int) ([]*FileMetadata, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	pattern = strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []*FileMetadata
	for _, file := range fi.Files {
		if len(results) >= maxResults {
			break
		}
		if file.IsDirectory {
			continue
		}

		matched, err := doublestar.Match(pattern, fi.relative(file.Path))
		if err != nil {
			continue
		}
		if matched {
			results = append(results, file)
		}
	}
	return results, nil
}

func (fi *FileIndex) relative(storePath string) string {
	if fi.BasePath == "/" {
		return strings.TrimPrefix(storePath, "/")
	}
	return strings.TrimPrefix(strings.TrimPrefix(storePath, fi.BasePath), "/")
}
