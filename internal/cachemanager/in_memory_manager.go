package cachemanager

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"subpager/internal/logging"
)

const DefaultExpiration = 30 * time.Second
const DefaultCleanupInterval = 5 * time.Minute

// CacheManager caches decoded responses under request keys. Keys sharing a
// prefix belong to one feed and are dropped together.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix K) int
}

// NewInMemoryCacheManager initializes the in-memory cache. useCase only
// labels log records.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
		log:     logging.L(logging.CatCache).With(zap.String("use_case", useCase)),
	}
}

// InMemoryCacheManager is the go-cache backed CacheManager
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
	log     *zap.Logger
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// Get retrieves an item from the cache by its key
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(string(key))
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		c.log.Error("wrong type assertion when getting value", zap.String("key", string(key)))
		return zeroValue, false
	}

	c.log.Debug("cache hit", zap.String("key", string(key)))
	return v, true
}

// Set stores value under key. A ttl of 0 uses the default expiration.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// how many were removed.
func (c *InMemoryCacheManager[K, V]) DeletePrefix(_ context.Context, prefix K) int {
	n := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, string(prefix)) {
			c.cache.Delete(key)
			n++
		}
	}
	if n > 0 {
		c.log.Debug("cache entries dropped", zap.String("prefix", string(prefix)), zap.Int("count", n))
	}
	return n
}

// Len returns the number of entries, expired ones included until cleanup.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
