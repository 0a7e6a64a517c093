// Package cache provides a Redis-backed cache used to avoid refetching
// unchanged pages across pipeline runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache: key not found")

// RedisCache wraps a Redis client with JSON serialization
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// New creates a new Redis cache and verifies connectivity
func New(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := client.Context()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, ctx: ctx}, nil
}

// Set stores a value under key with the given TTL
func (rc *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// Get retrieves a value into dest, returning ErrCacheMiss when absent
func (rc *RedisCache) Get(key string, dest interface{}) error {
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Exists reports whether a key is present
func (rc *RedisCache) Exists(key string) (bool, error) {
	n, err := rc.client.Exists(rc.ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a key
func (rc *RedisCache) Delete(key string) error {
	return rc.client.Del(rc.ctx, key).Err()
}

// Close closes the underlying client
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
