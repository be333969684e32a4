package parser

import (
	"sort"
	"sync"

	"github.com/hargabyte/ctx/internal/model"
)

// Facts are the values derived from one parse of a file.
type Facts struct {
	Summary *model.FileSummary
	Calls   []model.CallSite
}

type cacheEntry struct {
	modTime int64
	result  *ParseResult
	facts   *Facts
}

// Cache maps a file path to the parse of that file at a given modification
// time. An entry is only returned when the stored time equals the requested
// one; a newer write for the same path replaces the entry outright.
//
// Writes are serialized and the last completed write for a path wins, so
// two goroutines racing on the same stale file both succeed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Get returns the cached tree for path if it was stored at modTime.
func (c *Cache) Get(path string, modTime int64) (*ParseResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[path]
	if !ok || e.modTime != modTime || e.result == nil {
		return nil, false
	}
	return e.result, true
}

// Put stores a tree for path at modTime, discarding any previous entry and
// the facts derived from it.
func (c *Cache) Put(path string, modTime int64, result *ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = &cacheEntry{modTime: modTime, result: result}
}

// Facts returns the derived facts for path if they were stored at modTime.
func (c *Cache) Facts(path string, modTime int64) (*Facts, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[path]
	if !ok || e.modTime != modTime || e.facts == nil {
		return nil, false
	}
	return e.facts, true
}

// SetFacts attaches facts to the entry for path. If the entry is missing or
// was stored at a different time, it is replaced by a facts-only entry.
func (c *Cache) SetFacts(path string, modTime int64, facts *Facts) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || e.modTime != modTime {
		c.entries[path] = &cacheEntry{modTime: modTime, facts: facts}
		return
	}
	e.facts = facts
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths returns the cached paths in sorted order.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
