package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces doclai entries in a shared Redis database.
const DefaultKeyPrefix = "doclai:"

const (
	redisDialTimeout = 5 * time.Second
	redisOpTimeout   = 2 * time.Second
	redisScanCount   = 200
)

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // e.g. "redis://localhost:6379/0"
	TTL       time.Duration // 0 = no expiration
	KeyPrefix string
}

// RedisCache is a Redis-backed translation cache shared between workers.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to cfg.URL and checks the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &doclai.CacheError{Message: "parsing redis URL", Cause: err}
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		c.client.Close()
		return nil, &doclai.CacheError{Message: "connecting to redis", Cause: err}
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// Get returns the cached translation for key. Redis failures read as misses.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		logger.Debug("redis get %s: %v", key, err)
		return "", false
	}
	return val, true
}

// Set stores value under key with the configured TTL.
func (c *RedisCache) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return &doclai.CacheError{Message: "redis set", Cause: err}
	}
	return nil
}

// Entries scans every key under the prefix and returns their values with
// the prefix stripped. Keys that vanish during the scan are skipped.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	out := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", redisScanCount).Result()
		if err != nil {
			return nil, &doclai.CacheError{Message: "redis scan", Cause: err}
		}
		for _, full := range keys {
			val, err := c.client.Get(ctx, full).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, &doclai.CacheError{Message: "redis get " + full, Cause: err}
			}
			out[strings.TrimPrefix(full, c.prefix)] = val
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ Cache      = (*RedisCache)(nil)
	_ Enumerable = (*RedisCache)(nil)
)
