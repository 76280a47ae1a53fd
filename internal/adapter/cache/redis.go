// Package cache keeps slug to URL record id mappings in Redis. Slugs never
// change once created, so entries only expire to bound memory use.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "slug:"

type SlugCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSlugCache(client redis.Cmdable, ttl time.Duration) *SlugCache {
	return &SlugCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached URL record id for slug. A miss is reported with ok == false.
func (c *SlugCache) Get(ctx context.Context, slug string) (string, bool, error) {
	const op = "adapter.cache.SlugCache.Get"

	urlID, err := c.client.Get(ctx, keyPrefix+slug).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	return urlID, true, nil
}

func (c *SlugCache) Set(ctx context.Context, slug, urlID string) error {
	const op = "adapter.cache.SlugCache.Set"

	if err := c.client.Set(ctx, keyPrefix+slug, urlID, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

// NewClient connects to Redis and pings it once.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "adapter.cache.NewClient"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return client, nil
}
