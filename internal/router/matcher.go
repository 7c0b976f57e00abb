package router

import (
	"regexp"
	"sync"
)

// regexCacheMaxSize is the maximum number of entries in the pattern cache.
const regexCacheMaxSize = 1000

// regexCacheEntry holds a compiled regex and its access order for LRU eviction.
type regexCacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

// regexCache is a bounded LRU cache of compiled template expressions.
// Route tables are reloaded wholesale, so most templates recompile to
// an expression that is already cached.
type regexCache struct {
	mu      sync.Mutex
	entries map[string]*regexCacheEntry
	counter int64
	maxSize int
}

// patternCache is shared by every router in the process.
var patternCache = newRegexCache(regexCacheMaxSize)

func newRegexCache(maxSize int) *regexCache {
	return &regexCache{
		entries: make(map[string]*regexCacheEntry),
		maxSize: maxSize,
	}
}

// compile returns the compiled form of expr, compiling at most once
// per cached expression.
func (c *regexCache) compile(expr string) (*regexp.Regexp, error) {
	metrics := getRouterMetrics()

	c.mu.Lock()
	if entry, ok := c.entries[expr]; ok {
		c.counter++
		entry.accessOrder = c.counter
		c.mu.Unlock()
		metrics.cacheHits.Inc()
		return entry.regex, nil
	}
	c.mu.Unlock()

	metrics.cacheMisses.Inc()

	// Compile outside the lock
	regex, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have added it meanwhile
	if existing, ok := c.entries[expr]; ok {
		c.counter++
		existing.accessOrder = c.counter
		return existing.regex, nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRU()
		metrics.cacheEvictions.Inc()
	}

	c.counter++
	c.entries[expr] = &regexCacheEntry{regex: regex, accessOrder: c.counter}
	metrics.cacheSize.Set(float64(len(c.entries)))

	return regex, nil
}

// evictLRU removes the least recently used entry.
// Must be called with c.mu held.
func (c *regexCache) evictLRU() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range c.entries {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(c.entries, lruKey)
	}
}

// len returns the number of cached expressions.
func (c *regexCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
