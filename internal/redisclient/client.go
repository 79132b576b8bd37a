package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "storefront:"

// Client is a Redis key/value store for serialized shop state. Every write
// refreshes the key's TTL so idle sessions expire.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and checks connectivity
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientFromRedis(rdb, ttl), nil
}

// NewClientFromRedis wraps an existing go-redis client
func NewClientFromRedis(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get retrieves the value stored under key
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key with the configured TTL
func (c *Client) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}

// Touch refreshes the TTL of keys without rewriting them
func (c *Client) Touch(ctx context.Context, keys ...string) error {
	if c.ttl <= 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, k := range keys {
		pipe.Expire(ctx, keyPrefix+k, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
