package cache

import (
	"path/filepath"
	"sync"

	"github.com/TFMV/codemetrics/types"
	"github.com/golang/groupcache/lru"
	"github.com/zeebo/blake3"
)

// Key identifies file content independently of where the file lives.
type Key struct {
	Ext string
	Sum [32]byte
}

// KeyFor builds the cache key of a file from its extension and content.
func KeyFor(path string, src []byte) Key {
	return Key{Ext: filepath.Ext(path), Sum: blake3.Sum256(src)}
}

// ResultCache keeps the measurements of recently analyzed file contents so
// identical files are parsed once per run.
type ResultCache struct {
	cache *lru.Cache
	mu    sync.Mutex // lru.Get reorders the list, so reads lock exclusively too

	hits, misses int
}

// NewResultCache creates a cache holding up to size results. A size of 0
// means no limit.
func NewResultCache(size int) *ResultCache {
	return &ResultCache{cache: lru.New(size)}
}

// Get returns the cached result for key, relabelled for path.
func (c *ResultCache) Get(key Key, path string) (types.FileResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if val, ok := c.cache.Get(key); ok {
		c.hits++
		return val.(types.FileResult).WithPath(path), true
	}
	c.misses++
	return types.FileResult{}, false
}

// Put stores a result under key.
func (c *ResultCache) Put(key Key, res types.FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, res)
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *ResultCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear clears the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
}
