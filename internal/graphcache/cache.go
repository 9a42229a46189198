// Package graphcache memoizes computed graphs per identity and mode.
//
// The cache never invalidates itself on data change. Each entry records
// whether the owning trials were finished when the graph was computed; a
// consumer uses that flag to decide whether a cached graph for an
// in-progress trial is stale. Callers force recomputation by bypassing the
// cache for a call, not by mutating it.
//
// The value type is whatever the owner computes: a trial's wire graph or a
// two-trial diff graph.
package graphcache

import (
	"sync"

	"github.com/callsight/callsight/internal/summary"
)

// Entry is one memoized result plus the trial-finished flag captured at
// computation time.
type Entry[T any] struct {
	Finished bool
	Graph    T
}

// Cache is a concurrency-safe in-memory result cache.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]Entry[T])}
}

// Lookup returns the memoized entry for (identity, mode), if any.
func (c *Cache[T]) Lookup(identity string, mode summary.Mode) (Entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key(identity, mode)]
	return e, ok
}

// Store memoizes an entry under (identity, mode), replacing any prior one.
func (c *Cache[T]) Store(identity string, mode summary.Mode, e Entry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(identity, mode)] = e
}

// Len returns the number of memoized entries. Used for tests and
// diagnostics.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func key(identity string, mode summary.Mode) string {
	return identity + "/" + mode.String()
}
