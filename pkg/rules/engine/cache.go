package engine

import (
	"regexp"
	"sync"
)

// regexCache holds compiled ad hoc patterns, including failed compiles, so
// a pattern is compiled at most once while the cache has room. Once full,
// new patterns are compiled per use and not stored.
type regexCache struct {
	mu      sync.RWMutex
	entries map[string]compiledRegex
	limit   int
}

type compiledRegex struct {
	re  *regexp.Regexp
	err error
}

func newRegexCache(limit int) *regexCache {
	return &regexCache{
		entries: make(map[string]compiledRegex),
		limit:   limit,
	}
}

// compile returns the compiled pattern for src. A nil cache compiles
// without storing.
func (c *regexCache) compile(src string) (*regexp.Regexp, error) {
	if c == nil {
		return regexp.Compile(src)
	}

	c.mu.RLock()
	entry, ok := c.entries[src]
	c.mu.RUnlock()
	if ok {
		return entry.re, entry.err
	}

	re, err := regexp.Compile(src)

	c.mu.Lock()
	if len(c.entries) < c.limit {
		c.entries[src] = compiledRegex{re: re, err: err}
	}
	c.mu.Unlock()

	return re, err
}

// len returns the number of cached patterns.
func (c *regexCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
