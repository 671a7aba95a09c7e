// Package cache implements a tag-invalidated read-through cache.  Entries
// are stored with a fixed TTL and a set of tags; flushing a tag evicts
// every entry carrying it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Store is a key/value backend that understands tags.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags []string) error
	Flush(ctx context.Context, tags ...string) error
}

// TagCache wraps a Store with a fixed TTL.  A nil *TagCache is valid and
// caches nothing.
type TagCache struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

func New(store Store, ttl time.Duration, log *zap.Logger) *TagCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TagCache{store: store, ttl: ttl, log: log}
}

// Flush evicts every entry tagged with any of tags.  Backend errors are
// logged; stale entries then expire with their TTL.
func (c *TagCache) Flush(ctx context.Context, tags ...string) {
	if c == nil || len(tags) == 0 {
		return
	}
	if err := c.store.Flush(ctx, tags...); err != nil {
		c.log.Warn("cache flush failed", zap.Strings("tags", tags), zap.Error(err))
		return
	}
	c.log.Debug("cache flushed", zap.Strings("tags", tags))
}

// Remember returns the cached value for key or calls load, stores its
// result under tags and returns it.  Cache failures never fail the read.
func Remember[T any](ctx context.Context, c *TagCache, key string, tags []string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.log.Warn("cache entry undecodable", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl, tags); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
