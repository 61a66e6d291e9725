package transport

import (
	"sync"

	"github.com/gregjones/httpcache"
)

// trackedCache remembers the keys it has stored so the executor can purge
// them. httpcache keys entries by URL only, so cached bearer responses must
// not outlive the session that fetched them.
type trackedCache struct {
	httpcache.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

func newTrackedCache(cache httpcache.Cache) *trackedCache {
	return &trackedCache{Cache: cache, keys: map[string]struct{}{}}
}

func (c *trackedCache) Set(key string, responseBytes []byte) {
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
	c.Cache.Set(key, responseBytes)
}

func (c *trackedCache) Delete(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()
	c.Cache.Delete(key)
}

func (c *trackedCache) purge() int {
	c.mu.Lock()
	keys := make([]string, 0, len(c.keys))
	for key := range c.keys {
		keys = append(keys, key)
	}
	c.keys = map[string]struct{}{}
	c.mu.Unlock()

	for _, key := range keys {
		c.Cache.Delete(key)
	}
	return len(keys)
}
