// Package histcache memoizes history queries until explicitly invalidated.
//
// There is no TTL or size bound: entries exist because the underlying
// repository can change behind our back, so staleness is flushed actively
// (per file, per commit, or globally), never aged out.
package histcache

import (
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/maps"
)

// Tags scope an entry for invalidation. FilePath is empty for entries that
// are not file-scoped; CommitHash is empty for entries not tied to a commit.
type Tags struct {
	FilePath   string
	CommitHash string
}

type entry struct {
	key       string
	data      any
	createdAt time.Time
	tags      Tags
}

// Cache is a concurrency-safe memoization table keyed by composite strings.
// Overlapping writers for the same key converge last-writer-wins, which is
// sound because results are deterministic for a fixed commit.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[uint64]entry)}
}

// Key builds a composite cache key from an operation name and its arguments.
func Key(op string, args ...string) string {
	return op + "\x00" + strings.Join(args, "\x00")
}

// Get returns the payload stored under key, if any.
func (c *Cache) Get(key string) (any, bool) {
	h := xxh3.HashString(key)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[h]
	if !ok || e.key != key {
		return nil, false
	}
	return e.data, true
}

// Set stores a payload under key with the given invalidation tags.
func (c *Cache) Set(key string, data any, tags Tags) {
	h := xxh3.HashString(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[h] = entry{key: key, data: data, createdAt: time.Now(), tags: tags}
}

// InvalidateFile evicts every entry tagged with exactly this file path.
// Entries scoped to other files or to no file at all survive.
func (c *Cache) InvalidateFile(filePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range maps.Keys(c.entries) {
		if c.entries[h].tags.FilePath == filePath {
			delete(c.entries, h)
		}
	}
}

// InvalidateCommit evicts every entry tagged with this commit hash.
func (c *Cache) InvalidateCommit(commitHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range maps.Keys(c.entries) {
		if c.entries[h].tags.CommitHash == commitHash {
			delete(c.entries, h)
		}
	}
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]entry)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
