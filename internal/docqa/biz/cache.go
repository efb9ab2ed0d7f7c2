package biz

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/pkg/textutil"
	"github.com/kart-io/docqa/pkg/cache"
)

// QueryCacheConfig configures the query result cache.
type QueryCacheConfig struct {
	// Size bounds the in-process tier.
	Size int
	// TTL is the Redis entry lifetime.
	TTL time.Duration
	// KeyPrefix namespaces Redis keys.
	KeyPrefix string
}

// QueryCache caches query results keyed by (question, upload, session).
// The first tier is an in-process LFU cache; a Redis tier is layered
// behind it when a client is provided, so results survive restarts.
type QueryCache struct {
	lfu    *cache.LFU[string, *QueryResult]
	redis  *goredis.Client
	config *QueryCacheConfig
}

// NewQueryCache creates a query cache. redis may be nil.
func NewQueryCache(redis *goredis.Client, config *QueryCacheConfig) *QueryCache {
	if config == nil {
		config = &QueryCacheConfig{}
	}
	if config.Size <= 0 {
		config.Size = 100
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "docqa:query:"
	}

	return &QueryCache{
		lfu:    cache.NewLFU[string, *QueryResult](config.Size),
		redis:  redis,
		config: config,
	}
}

// cacheKey hashes the identifying triple so raw question text never
// appears in Redis keys.
func (c *QueryCache) cacheKey(question, uploadID, sessionID string) string {
	return c.config.KeyPrefix + textutil.HashKey(question, uploadID, sessionID)
}

// Get returns the cached result, if any. Redis hits are promoted into
// the in-process tier.
func (c *QueryCache) Get(ctx context.Context, question, uploadID, sessionID string) (*QueryResult, bool) {
	key := c.cacheKey(question, uploadID, sessionID)

	if result, ok := c.lfu.Get(key); ok {
		return result, true
	}

	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			zap.S().Warnw("query cache redis get failed", "error", err, "key", key)
		}
		return nil, false
	}

	var result QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		zap.S().Warnw("dropping corrupt query cache entry", "error", err, "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}

	c.lfu.Set(key, &result)
	return &result, true
}

// Set stores the result in both tiers. Redis failures are logged and
// otherwise ignored.
func (c *QueryCache) Set(ctx context.Context, question, uploadID, sessionID string, result *QueryResult) {
	key := c.cacheKey(question, uploadID, sessionID)

	c.lfu.Set(key, result)

	if c.redis == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		zap.S().Warnw("query cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		zap.S().Warnw("query cache redis set failed", "error", err, "key", key)
	}
}

// Clear empties both tiers. The Redis tier is scanned by prefix.
func (c *QueryCache) Clear(ctx context.Context) error {
	c.lfu.Clear()

	if c.redis == nil {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Stats reports the cache tiers' state.
func (c *QueryCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"entries":       c.lfu.Len(),
		"capacity":      c.lfu.Capacity(),
		"redis_enabled": c.redis != nil,
	}
}
