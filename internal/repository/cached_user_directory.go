package repository

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/pkg/cache"
)

const userKeyPrefix = "booking:user:"

// CachedUserDirectory is a read-through cache in front of a UserDirectory.
// Cache failures fall back to the underlying directory.
type CachedUserDirectory struct {
	next   catalog.UserDirectory
	cache  cache.Cache
	logger *zap.Logger
}

// NewCachedUserDirectory creates a new CachedUserDirectory over next.
func NewCachedUserDirectory(next catalog.UserDirectory, c cache.Cache, logger *zap.Logger) *CachedUserDirectory {
	return &CachedUserDirectory{next: next, cache: c, logger: logger}
}

// Get returns the user from cache, loading and caching it on a miss.
func (d *CachedUserDirectory) Get(ctx context.Context, id int64) (*catalog.User, error) {
	key := userKey(id)

	var cached catalog.User
	found, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	u, err := d.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Set(ctx, key, u); err != nil {
		d.logger.Warn("user cache write failed", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

// Exists reports whether the user is known, answering from cache when possible.
func (d *CachedUserDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	key := userKey(id)

	var cached catalog.User
	found, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return true, nil
	}
	return d.next.Exists(ctx, id)
}

// Invalidate drops the cached entry for id.
func (d *CachedUserDirectory) Invalidate(ctx context.Context, id int64) {
	if err := d.cache.Delete(ctx, userKey(id)); err != nil {
		d.logger.Warn("user cache invalidation failed", zap.Int64("user_id", id), zap.Error(err))
	}
}

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}
