package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lexandro/davsearch-mcp/ignore"
	"github.com/lexandro/davsearch-mcp/store"
)

var (
	// ErrIndexTimeout means the whole walk ran past its wall-clock budget.
	ErrIndexTimeout = errors.New("index walk timed out")
	// ErrIndexFailed means the base path itself could not be listed.
	ErrIndexFailed = errors.New("index walk failed")
)

// Options configures an Indexer. Zero values take the defaults noted per field.
type Options struct {
	MaxDepth       int           // Depth for subdirectory walks (10)
	MaxIndexSize   int           // Entry ceiling per walk (10000)
	Concurrency    int           // Concurrent directory listings (3)
	CacheTTL       time.Duration // Snapshot lifetime (15m)
	ListingTimeout time.Duration // Per-directory listing budget (10s)

	QuickRootDepth   int           // 2
	QuickRootTimeout time.Duration // 15s
	RootDepth        int           // 3
	RootTimeout      time.Duration // 20s
	SubdirTimeout    time.Duration // 30s

	Matcher *ignore.Matcher
}

func (o *Options) applyDefaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 10
	}
	if o.MaxIndexSize <= 0 {
		o.MaxIndexSize = 10000
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 15 * time.Minute
	}
	if o.ListingTimeout <= 0 {
		o.ListingTimeout = 10 * time.Second
	}
	if o.QuickRootDepth <= 0 {
		o.QuickRootDepth = 2
	}
	if o.QuickRootTimeout <= 0 {
		o.QuickRootTimeout = 15 * time.Second
	}
	if o.RootDepth <= 0 {
		o.RootDepth = 3
	}
	if o.RootTimeout <= 0 {
		o.RootTimeout = 20 * time.Second
	}
	if o.SubdirTimeout <= 0 {
		o.SubdirTimeout = 30 * time.Second
	}
}

// Request selects the subtree and walk mode for GetIndex.
type Request struct {
	BasePath string
	Quick    bool // Shallow, short-budget walk; applies to the root only
	MaxDepth int  // Overrides the mode's depth when > 0
}

// CacheEntry describes one cached snapshot.
type CacheEntry struct {
	BasePath    string
	Age         time.Duration
	FileCount   int
	DirCount    int
	MaxDepth    int
	Truncated   bool
	LastUpdated time.Time
}

// Indexer walks the store and caches one snapshot per base path.
// Safe for concurrent use; two concurrent misses for the same path both walk
// and the later one wins the cache slot.
type Indexer struct {
	store   store.Store
	options Options
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*FileIndex
}

func NewIndexer(backing store.Store, options Options, logger *slog.Logger) *Indexer {
	options.applyDefaults()
	return &Indexer{
		store:   backing,
		options: options,
		logger:  logger,
		cache:   make(map[string]*FileIndex),
	}
}

// Options returns the effective configuration.
func (ix *Indexer) Options() Options {
	return ix.options
}

// plan returns the depth and time budget for a request.
func (ix *Indexer) plan(req Request) (string, int, time.Duration) {
	basePath := store.CleanPath(req.BasePath)

	var maxDepth int
	var timeout time.Duration
	switch {
	case basePath == "/" && req.Quick:
		maxDepth, timeout = ix.options.QuickRootDepth, ix.options.QuickRootTimeout
	case basePath == "/":
		maxDepth, timeout = ix.options.RootDepth, ix.options.RootTimeout
	default:
		maxDepth, timeout = ix.options.MaxDepth, ix.options.SubdirTimeout
	}
	if req.MaxDepth > 0 {
		maxDepth = req.MaxDepth
	}
	return basePath, maxDepth, timeout
}

// GetIndex returns a fresh-enough snapshot of req.BasePath, walking the store on a miss.
// A cached snapshot is reused only if it is younger than the TTL and was walked at
// least as deep as this request needs.
//
// Errors: ErrIndexTimeout when the walk exceeds its budget, ErrIndexFailed when the
// base path cannot be listed, or the caller's context error.
func (ix *Indexer) GetIndex(ctx context.Context, req Request) (*FileIndex, error) {
	basePath, maxDepth, timeout := ix.plan(req)

	if cached := ix.lookup(basePath, maxDepth); cached != nil {
		ix.logger.Debug("index cache hit", "basePath", basePath, "age", cached.Age(), "files", len(cached.Files))
		return cached, nil
	}

	start := time.Now()
	walkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	w := &walker{
		store:          ix.store,
		matcher:        ix.options.Matcher,
		logger:         ix.logger,
		maxDepth:       maxDepth,
		maxEntries:     ix.options.MaxIndexSize,
		concurrency:    ix.options.Concurrency,
		listingTimeout: ix.options.ListingTimeout,
	}
	if err := w.run(walkCtx, basePath); err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(walkCtx.Err(), context.DeadlineExceeded):
			ix.logger.Warn("index walk timed out", "basePath", basePath, "timeout", timeout, "collected", len(w.entries))
			return nil, fmt.Errorf("indexing %s after %s: %w", basePath, timeout, ErrIndexTimeout)
		default:
			return nil, fmt.Errorf("indexing %s: %w: %w", basePath, ErrIndexFailed, err)
		}
	}

	fileIndex := NewFileIndex(basePath, w.entries, maxDepth)
	fileIndex.Truncated = w.truncated

	ix.mu.Lock()
	ix.cache[basePath] = fileIndex
	ix.mu.Unlock()

	ix.logger.Info("indexed",
		"basePath", basePath,
		"files", fileIndex.FileCount,
		"dirs", fileIndex.DirectoryCount,
		"maxDepth", maxDepth,
		"truncated", fileIndex.Truncated,
		"failedDirs", w.failedDirs,
		"elapsed", time.Since(start),
	)
	return fileIndex, nil
}

func (ix *Indexer) lookup(basePath string, maxDepth int) *FileIndex {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cached, ok := ix.cache[basePath]
	if !ok {
		return nil
	}
	if cached.Age() >= ix.options.CacheTTL {
		delete(ix.cache, basePath)
		return nil
	}
	if cached.MaxDepth < maxDepth {
		return nil
	}
	return cached
}

// UpdateIndex drops the most specific cached snapshot whose base path contains storePath.
// Returns the invalidated base path, or "" when nothing was cached for it.
func (ix *Indexer) UpdateIndex(storePath string) string {
	storePath = store.CleanPath(storePath)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	best := ""
	for basePath := range ix.cache {
		if store.HasPathPrefix(storePath, basePath) && len(basePath) > len(best) {
			best = basePath
		}
	}
	if best != "" {
		delete(ix.cache, best)
		ix.logger.Debug("index invalidated", "path", storePath, "basePath", best)
	}
	return best
}

// Clear drops every cached snapshot.
func (ix *Indexer) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cache = make(map[string]*FileIndex)
}

// Stats lists the cached snapshots sorted by base path.
func (ix *Indexer) Stats() []CacheEntry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries := make([]CacheEntry, 0, len(ix.cache))
	for _, fi := range ix.cache {
		entries = append(entries, CacheEntry{
			BasePath:    fi.BasePath,
			Age:         fi.Age(),
			FileCount:   fi.FileCount,
			DirCount:    fi.DirectoryCount,
			MaxDepth:    fi.MaxDepth,
			Truncated:   fi.Truncated,
			LastUpdated: fi.LastUpdated,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BasePath < entries[j].BasePath
	})
	return entries
}

// ListShallow lists the direct children of basePath without recursing or caching,
// under the per-directory listing budget. Ignore rules still apply.
func (ix *Indexer) ListShallow(ctx context.Context, basePath string) ([]*FileMetadata, error) {
	basePath = store.CleanPath(basePath)
	children, err := runWithTimeout(ctx, ix.options.ListingTimeout, func(callCtx context.Context) ([]store.Entry, error) {
		return ix.store.ListDirectory(callCtx, basePath)
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", basePath, err)
	}

	files := make([]*FileMetadata, 0, len(children))
	for _, child := range children {
		if store.CleanPath(child.Path) == basePath {
			continue
		}
		if ix.options.Matcher != nil && ix.options.Matcher.ShouldIgnore(child.Path, child.IsDirectory) {
			continue
		}
		files = append(files, NewFileMetadata(child, 0))
	}
	return files, nil
}
