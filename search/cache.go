package search

import (
	"sync"
	"time"
)

type cachedResults struct {
	results  []Result
	storedAt time.Time
}

// resultCache keeps finished result sets for a short TTL.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedResults
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, entries: make(map[string]cachedResults)}
}

func (c *resultCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return cloneResults(entry.results), true
}

func (c *resultCache) put(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Expired entries are swept on write so the map cannot grow without bound
	for k, entry := range c.entries {
		if time.Since(entry.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedResults{results: cloneResults(results), storedAt: time.Now()}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedResults)
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
