// Package cache is a Redis-backed query result cache. Identical concurrent
// queries are collapsed with singleflight so the evaluator runs once per
// distinct (query, limit) pair.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/karthikrangan/irengine/internal/searcher/evaluator"
	"github.com/karthikrangan/irengine/pkg/config"
	pkgredis "github.com/karthikrangan/irengine/pkg/redis"
)

const keyPrefix = "search:"

// QueryCache caches SearchResults keyed by query text and limit.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

// New creates a QueryCache on top of an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached result for (query, limit) or runs compute,
// caching its result. The bool reports whether the value came from cache.
// Redis failures degrade to computing directly.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	compute func() (*evaluator.SearchResult, error),
) (*evaluator.SearchResult, bool, error) {
	key := cacheKey(query, limit)

	if cached, err := c.client.Get(ctx, key); err == nil {
		var result evaluator.SearchResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			c.hits.Add(1)
			return &result, true, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	} else if !pkgredis.IsNilError(err) {
		c.logger.Warn("cache read failed", "error", err)
	}
	c.misses.Add(1)

	value, err, _ := c.group.Do(key, func() (any, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(result); err == nil {
			if err := c.client.Set(ctx, key, encoded, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("cache write failed", "error", err)
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*evaluator.SearchResult), false, nil
}

// Invalidate removes all cached search results.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func cacheKey(query string, limit int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", query, limit))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
