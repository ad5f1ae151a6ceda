// Package cache is the response cache for directory reads: an explicit
// object keyed by request path, with a TTL and explicit invalidation, backed
// by redis so every instance shares one view.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) key(k string) string { return "resp:" + k }

// Get unmarshals the cached value for key into dest. ok is false on a miss;
// redis errors other than a miss propagate so callers can log and fall
// through to the source of truth.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		// a corrupt entry behaves like a miss; it will be overwritten
		return false, nil
	}
	return true, nil
}

// Set stores value under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %q: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.key(key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Invalidate drops one key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.key(key)).Err()
}

// InvalidateAll drops every cached response. Ingest calls this so stale
// directory reads never outlive a schedule change by more than one request.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.key("*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
