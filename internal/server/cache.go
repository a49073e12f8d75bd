package server

import (
	"encoding/json"
	"sync"

	"github.com/buffos/go-reflections/internal/export"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the number of rendered downloads kept in memory.
const DefaultCacheSize = 64

// exportCache keeps recent downloads so that fetching the same figure twice
// does not start another browser. Entries are keyed by format and figure, so
// sessions drawing identical figures share them.
type exportCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newExportCache(size int) *exportCache {
	if size <= 0 {
		return nil
	}
	return &exportCache{cache: lru.New(size)}
}

func cacheKey(snap session.Snapshot, format string) (string, error) {
	b, err := json.Marshal(export.FromSnapshot(snap))
	if err != nil {
		return "", err
	}
	return format + "\x00" + string(b), nil
}

func (c *exportCache) get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *exportCache) add(key string, b []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cache.Add(key, b)
	c.mu.Unlock()
}

func (c *exportCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
