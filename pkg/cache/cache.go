package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/shareit/service-booking/pkg/tracing"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
)

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	// Get decodes the value at key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	otel   tracing.Otel
}

// NewRedisCache stores entries in redis with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, ot tracing.Otel) Cache {
	return &redisCache{client: client, ttl: ttl, otel: ot}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttribute(otelCacheKeyAttribute, key)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) (err error) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+".Set")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttribute(otelCacheKeyAttribute, key)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache value: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttribute(otelCacheKeyAttribute, key)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache value: %w", err)
	}
	return nil
}

type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

// NewMemoryCache is an in-process cache bounded by size and TTL, used when
// redis is not configured.
func NewMemoryCache(size int, ttl time.Duration) Cache {
	return &memoryCache{entries: lru.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := c.entries.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	c.entries.Add(key, raw)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}
