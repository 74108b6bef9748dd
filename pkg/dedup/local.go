package dedup

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type LocalCache struct {
	cache *cache.Cache
}

// NewLocalCache keeps keys in process memory for ttl and purges expired
// entries every ttl/2.
func NewLocalCache(ttl time.Duration) *LocalCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LocalCache{
		cache: cache.New(ttl, ttl/2),
	}
}

func (c *LocalCache) Seen(_ context.Context, key string) (bool, error) {
	_, found := c.cache.Get(key)
	return found, nil
}

func (c *LocalCache) Mark(_ context.Context, key string) error {
	c.cache.SetDefault(key, struct{}{})
	return nil
}

func (c *LocalCache) Len() int {
	return c.cache.ItemCount()
}
