package scope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheObserver receives hit/miss notifications per resource.
type CacheObserver interface {
	ObserveCache(resource string, hit bool)
}

// Cache stores scoped query results in Redis. Each (organization, resource)
// pair owns a version counter that is part of every key; invalidation bumps
// the counter so stale entries are never read again and expire on their own.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	observer CacheObserver
}

// NewCache builds a Cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, observer CacheObserver) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, observer: observer}
}

func versionKey(org uuid.UUID, resource string) string {
	return "scope:v:" + org.String() + ":" + resource
}

// Version returns the current version for the organization's resource.
func (c *Cache) Version(ctx context.Context, org uuid.UUID, resource string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(org, resource)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scope: cache version: %w", err)
	}
	return ver, nil
}

// Key composes the cache key for a scoped query. Filters are appended in order.
func (c *Cache) Key(ctx context.Context, org uuid.UUID, resource string, filters ...string) (string, error) {
	ver, err := c.Version(ctx, org, resource)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(filters)+4)
	parts = append(parts, "scope", org.String(), resource, fmt.Sprintf("v%d", ver))
	for _, f := range filters {
		if f == "" {
			f = "-"
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, ":"), nil
}

// Fetch reads key into dest, or runs loader and stores its result.
func (c *Cache) Fetch(ctx context.Context, resource, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("scope: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
				c.observe(resource, true)
				return nil
			}
		} else if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("scope: cache get: %w", err)
		}
	}
	c.observe(resource, false)
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return fmt.Errorf("scope: cache set: %w", err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the version of each resource for the organization.
func (c *Cache) Invalidate(ctx context.Context, org uuid.UUID, resources ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, resource := range resources {
		pipe.Incr(ctx, versionKey(org, resource))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("scope: invalidate: %w", err)
	}
	return nil
}

func (c *Cache) observe(resource string, hit bool) {
	if c == nil || c.observer == nil {
		return
	}
	c.observer.ObserveCache(resource, hit)
}
