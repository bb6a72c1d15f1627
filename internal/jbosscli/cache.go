package jbosscli

import (
	"sync"
	"time"
)

// cacheKey is the full connection identity plus the literal command string.
// Two pollers hitting the same controller with the same command share an
// entry; anything else misses.
type cacheKey struct {
	host    string
	port    int
	user    string
	command string
}

type cacheEntry struct {
	at     time.Time
	result Result
}

// resultCache is a process-wide TTL cache for read-only command results.
// A single mutex serializes access; entries expire passively on read rather
// than by capacity bound.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		now:     time.Now,
	}
}

// get returns the cached result for key if present and fresh. Expired
// entries are removed on access.
func (c *resultCache) get(key cacheKey) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.at) > c.ttl {
		delete(c.entries, key)
		return Result{}, false
	}
	return entry.result, true
}

// put stores a result under key, stamping it with the current time.
func (c *resultCache) put(key cacheKey, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{at: c.now(), result: result}
}

// size returns the number of entries, expired or not.
func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
