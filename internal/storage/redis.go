package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisDialTimeout  = 3 * time.Second
	redisReadTimeout  = 2 * time.Second
	redisWriteTimeout = 2 * time.Second
	redisPingTimeout  = 2 * time.Second
)

// RedisKV implements KV on a Redis server. Every key is stored under prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
	owns   bool
}

// NewRedisKV wraps an existing client. The caller keeps ownership of client.
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// OpenRedis parses redisURL, connects, and verifies the server with a ping.
func OpenRedis(ctx context.Context, redisURL, prefix string) (*RedisKV, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = 4
	options.MinIdleConns = 1
	options.DialTimeout = redisDialTimeout
	options.ReadTimeout = redisReadTimeout
	options.WriteTimeout = redisWriteTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return &RedisKV{client: client, prefix: prefix, owns: true}, nil
}

func (r *RedisKV) key(k string) string {
	return r.prefix + k
}

// Get returns the value stored under key.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key without expiry.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the client when it was opened by OpenRedis.
func (r *RedisKV) Close() error {
	if r.owns {
		return r.client.Close()
	}
	return nil
}
