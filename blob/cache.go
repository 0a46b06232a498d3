package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// URLCache caches signed download URLs so repeated lookups for the same
// key do not round-trip to the backend's signing path. Cache failures
// are never fatal; callers fall through to the backend.
type URLCache interface {
	GetURL(ctx context.Context, key string) (string, error)
	SetURL(ctx context.Context, key, url string, ttl time.Duration) error
	DeleteURL(ctx context.Context, key string) error
}

// RedisCache implements the URLCache interface using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(ctx context.Context, address string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		Password:    "", // no password
		DB:          0,  // use default DB
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	// Test connection with the provided context
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetURL gets a signed URL from the cache
func (c *RedisCache) GetURL(ctx context.Context, key string) (string, error) {
	url, err := c.client.Get(ctx, urlCacheKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", err
	}
	return url, nil
}

// SetURL sets a signed URL in the cache
func (c *RedisCache) SetURL(ctx context.Context, key, url string, ttl time.Duration) error {
	return c.client.Set(ctx, urlCacheKey(key), url, ttl).Err()
}

// DeleteURL deletes a signed URL from the cache
func (c *RedisCache) DeleteURL(ctx context.Context, key string) error {
	return c.client.Del(ctx, urlCacheKey(key)).Err()
}

func urlCacheKey(key string) string {
	return fmt.Sprintf("signedurl:%s", key)
}

// NoOpCache implements the URLCache interface but does nothing
type NoOpCache struct{}

// GetURL returns a not found error
func (NoOpCache) GetURL(ctx context.Context, key string) (string, error) {
	return "", ErrNotFound
}

// SetURL does nothing
func (NoOpCache) SetURL(ctx context.Context, key, url string, ttl time.Duration) error {
	return nil
}

// DeleteURL does nothing
func (NoOpCache) DeleteURL(ctx context.Context, key string) error {
	return nil
}
