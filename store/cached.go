package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const cacheKeyPrefix = "remitlink::secure_entry::v1::"

// CachedBackend reads through a go-repository-cache service. Writes and
// removals go to the base backend and invalidate the cached key.
type CachedBackend struct {
	base  Backend
	cache repositorycache.CacheService
}

func NewCachedBackend(base Backend, cacheService repositorycache.CacheService) (*CachedBackend, error) {
	if base == nil {
		return nil, fmt.Errorf("store: cached backend requires a base backend")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("store: cached backend requires a cache service")
	}
	return &CachedBackend{base: base, cache: cacheService}, nil
}

// NewDefaultCacheService builds the in-process cache used by CachedBackend.
func NewDefaultCacheService(ttl time.Duration) (repositorycache.CacheService, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	return repositorycache.NewCacheService(config)
}

// CacheKey is remitlink::secure_entry::v1::<key> with the key path-escaped.
func CacheKey(key string) string {
	return cacheKeyPrefix + url.PathEscape(key)
}

func (b *CachedBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.base.Put(ctx, key, value); err != nil {
		return err
	}
	return b.cache.Delete(ctx, CacheKey(key))
}

func (b *CachedBackend) Fetch(ctx context.Context, key string) ([]byte, error) {
	value, err := repositorycache.GetOrFetch(ctx, b.cache, CacheKey(key), func(ctx context.Context) ([]byte, error) {
		return b.base.Fetch(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), value...), nil
}

func (b *CachedBackend) Remove(ctx context.Context, key string) error {
	removeErr := b.base.Remove(ctx, key)
	if err := b.cache.Delete(ctx, CacheKey(key)); err != nil {
		return err
	}
	return removeErr
}
