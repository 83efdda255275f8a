// Package cache implements an explicit cache-aside layer over Redis.
//
// Keys follow {prefix}:{namespace}[:{id}]: list-shaped results cache
// under the bare namespace while single items cache under namespace:id,
// so invalidating a namespace is a SCAN-based wildcard delete, not a
// single eviction.
//
// The cache is best-effort throughout: a backend error on read means
// compute from the store of record, a backend error on write or
// invalidation is logged and swallowed. Mutations must never fail
// because the cache is down.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/pkg/metrics"
)

type Cache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	log     *zap.Logger
	metrics *metrics.Collector
}

func New(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger, m *metrics.Collector) *Cache {
	return &Cache{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		log:     log,
		metrics: m,
	}
}

// TTL returns the configured default expiry.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// ItemKey builds the cache key for a single record.
func (c *Cache) ItemKey(namespace, id string) string {
	return c.prefix + ":" + namespace + ":" + id
}

// NamespaceKey builds the cache key a list result is stored under.
func (c *Cache) NamespaceKey(namespace string) string {
	return c.prefix + ":" + namespace
}

// GetOrCompute returns the cached value for key, or runs compute and
// populates the cache before returning. compute runs whenever the
// cache cannot answer, including when the backend is unreachable.
func (c *Cache) GetOrCompute(ctx context.Context, namespace, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.WithLabelValues(namespace).Inc()
		}
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.Warn("cache read failed, computing from store",
			zap.String("key", key),
			zap.Error(err),
		)
	} else if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(namespace).Inc()
	}

	computed, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, key, computed, ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return computed, nil
}

// Invalidate removes a single cache entry.
func (c *Cache) Invalidate(ctx context.Context, namespace, id string) {
	key := c.ItemKey(namespace, id)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
		return
	}
	if c.metrics != nil {
		c.metrics.CacheInvalidationsTotal.WithLabelValues(namespace).Inc()
	}
}

// InvalidateNamespace deletes every key under {prefix}:{namespace}*.
// List results cache under the bare namespace and items under
// namespace:id, so both fall to the same wildcard.
func (c *Cache) InvalidateNamespace(ctx context.Context, namespace string) {
	pattern := c.NamespaceKey(namespace) + "*"

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache namespace scan failed",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		return
	}
	if c.metrics != nil {
		c.metrics.CacheInvalidationsTotal.WithLabelValues(namespace).Inc()
	}
}
