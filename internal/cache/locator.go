// Package cache provides a Redis-backed download-locator cache layered over
// a blob store. Locators are presigned URLs with a bounded validity window,
// so entries expire well before the URL itself does and are invalidated
// when the underlying blob is deleted.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
)

// ttlHeadroom keeps cached locators from outliving the presigned URL.
const ttlHeadroom = time.Minute

// LocatorStore decorates a blob.Store with locator caching. Put is passed
// through untouched; DownloadLocator consults Redis first; Delete drops the
// cached locator after the blob is gone.
type LocatorStore struct {
	blob.Store
	client *redis.Client
	ttl    time.Duration
}

// NewLocatorStore connects to Redis and wraps next.
func NewLocatorStore(ctx context.Context, next blob.Store, cfg *config.Config) (*LocatorStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	ttl := cfg.LocatorExpiry - ttlHeadroom
	if ttl <= 0 {
		ttl = cfg.LocatorExpiry / 2
	}

	return &LocatorStore{Store: next, client: client, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (s *LocatorStore) Close() error {
	return s.client.Close()
}

func locatorKey(key string) string {
	return "locator:" + key
}

// DownloadLocator returns the cached locator for key when present,
// otherwise resolves one from the wrapped store and caches it. Cache
// failures fall back to the wrapped store rather than failing the call.
func (s *LocatorStore) DownloadLocator(ctx context.Context, key string) (string, error) {
	cached, err := s.client.Get(ctx, locatorKey(key)).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		// Degraded cache; resolve directly.
		return s.Store.DownloadLocator(ctx, key)
	}

	url, err := s.Store.DownloadLocator(ctx, key)
	if err != nil || url == "" {
		return url, err
	}

	_ = s.client.Set(ctx, locatorKey(key), url, s.ttl).Err()
	return url, nil
}

// Delete removes the blob, then drops its cached locator.
func (s *LocatorStore) Delete(ctx context.Context, key string) error {
	if err := s.Store.Delete(ctx, key); err != nil {
		return err
	}
	_ = s.client.Del(ctx, locatorKey(key)).Err()
	return nil
}
