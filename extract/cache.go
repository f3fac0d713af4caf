package extract

import (
	"sync"
	"time"
)

type cacheEntry struct {
	text        string
	bytes       int64 // Size of text, counted against the ceiling
	extractedAt time.Time
	modified    time.Time // Source file's LastModified at extraction
	fileSize    int64     // Source file's size at extraction
}

// contentCache holds extracted text by path with a TTL and a total-size ceiling.
// Oldest entries (by extraction time) are evicted first.
type contentCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxBytes   int64
	entries    map[string]*cacheEntry
	totalBytes int64
	hits       int64
	misses     int64
	evictions  int64
}

func newContentCache(ttl time.Duration, maxBytes int64) *contentCache {
	return &contentCache{
		ttl:      ttl,
		maxBytes: maxBytes,
		entries:  make(map[string]*cacheEntry),
	}
}

// get returns cached text if it is younger than the TTL and the source file has not
// changed size or modification time since extraction.
func (c *contentCache) get(path string, modified time.Time, fileSize int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		c.misses++
		return "", false
	}
	if time.Since(entry.extractedAt) >= c.ttl || !entry.modified.Equal(modified) || entry.fileSize != fileSize {
		c.removeLocked(path)
		c.misses++
		return "", false
	}
	c.hits++
	return entry.text, true
}

// put stores text unless it exceeds a tenth of the ceiling. Returns false when skipped.
func (c *contentCache) put(path string, text string, modified time.Time, fileSize int64) bool {
	size := int64(len(text))
	if size > c.maxBytes/10 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(path)
	for c.totalBytes+size > c.maxBytes && len(c.entries) > 0 {
		c.evictOldestLocked()
	}
	c.entries[path] = &cacheEntry{
		text:        text,
		bytes:       size,
		extractedAt: time.Now(),
		modified:    modified,
		fileSize:    fileSize,
	}
	c.totalBytes += size
	return true
}

func (c *contentCache) evictOldestLocked() {
	oldestPath := ""
	var oldest time.Time
	for path, entry := range c.entries {
		if oldestPath == "" || entry.extractedAt.Before(oldest) {
			oldestPath = path
			oldest = entry.extractedAt
		}
	}
	c.removeLocked(oldestPath)
	c.evictions++
}

func (c *contentCache) removeLocked(path string) {
	if entry, ok := c.entries[path]; ok {
		c.totalBytes -= entry.bytes
		delete(c.entries, path)
	}
}

// removeMatching drops every entry for which match returns true.
func (c *contentCache) removeMatching(match func(path string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for path := range c.entries {
		if match(path) {
			c.removeLocked(path)
			removed++
		}
	}
	return removed
}

func (c *contentCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.totalBytes = 0
}

// CacheStats is a point-in-time view of the content cache.
type CacheStats struct {
	Entries   int
	Bytes     int64
	MaxBytes  int64
	Hits      int64
	Misses    int64
	Evictions int64
}

func (c *contentCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Bytes:     c.totalBytes,
		MaxBytes:  c.maxBytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
