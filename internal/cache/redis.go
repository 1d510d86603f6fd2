package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/service"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces resolution entries in a shared Redis instance.
const keyPrefix = "catres:resolution:"

// RedisConfig holds connection settings for the shared cache backend.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RedisCache is a Cache backend on a shared Redis instance, used when
// several resolver processes serve the same inventory. Expiry is handled
// server-side via key TTLs.
type RedisCache struct {
	client *redis.Client
}

var _ service.Cache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a result if present.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*model.ResolutionResult, error) {
	payload, err := c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var result model.ResolutionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	return &result, nil
}

// Put stores a result with a server-side TTL.
func (c *RedisCache) Put(ctx context.Context, fingerprint string, result *model.ResolutionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+fingerprint, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
