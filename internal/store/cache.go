package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlist-go/internal/shortlist"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedStore puts a Redis read-through cache in front of a durable store.
// Cache writes are best-effort: a cache failure never fails the operation.
type CachedStore struct {
	store  shortlist.Store
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedStore creates a caching decorator. Cached entries live for at
// most ttl, or the record TTL if that is shorter.
func NewCachedStore(
	store shortlist.Store, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger,
) *CachedStore {
	return &CachedStore{
		store:  store,
		client: client,
		prefix: "cache:",
		ttl:    ttl,
		logger: logger,
	}
}

// Put writes to the durable store, then updates the cache.
func (c *CachedStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.Put(ctx, key, value, ttl); err != nil {
		return err
	}

	c.cache(ctx, key, value, c.cacheTTL(ttl))

	return nil
}

// Get serves from cache when possible. Concurrent misses for the same key
// share a single read of the durable store.
func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == nil {
		return value, nil
	}

	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	// The read is shared by every waiting caller, so it must outlive the first one.
	shared := context.WithoutCancel(ctx)

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := c.store.Get(shared, key)
		if err != nil {
			return nil, err
		}

		c.cache(shared, key, value, c.ttl)

		return value, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// Ping checks the durable store when it supports it.
func (c *CachedStore) Ping(ctx context.Context) error {
	if p, ok := c.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}

	return c.client.Ping(ctx).Err()
}

// Purge delegates to the durable store when it supports it.
func (c *CachedStore) Purge(ctx context.Context) (int64, error) {
	if p, ok := c.store.(Purger); ok {
		return p.Purge(ctx)
	}

	return 0, nil
}

func (c *CachedStore) cacheTTL(recordTTL time.Duration) time.Duration {
	if recordTTL > 0 && recordTTL < c.ttl {
		return recordTTL
	}

	return c.ttl
}

func (c *CachedStore) cache(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Compile-time check.
var _ shortlist.Store = (*CachedStore)(nil)
