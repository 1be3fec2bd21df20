package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

const redisKeyPrefix = "parceltrack:tracking:"

// RedisConfig holds the redis connection settings of the shared cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisEventCache is an EventCache shared by every replica through redis.
type RedisEventCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisEventCache connects to redis and verifies the connection.
func NewRedisEventCache(ctx context.Context, cfg RedisConfig) (*RedisEventCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisEventCacheWithClient(client), nil
}

// NewRedisEventCacheWithClient wraps an existing client.
func NewRedisEventCacheWithClient(client redis.UniversalClient) *RedisEventCache {
	return &RedisEventCache{client: client, keyPrefix: redisKeyPrefix}
}

// Get implements EventCache.
func (c *RedisEventCache) Get(ctx context.Context, trackingCode string) (*domain.TrackingInfo, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+trackingCode).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tracking cache: %w", err)
	}

	var info domain.TrackingInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, false, fmt.Errorf("failed to decode tracking cache entry: %w", err)
	}
	return &info, true, nil
}

// Set implements EventCache.
func (c *RedisEventCache) Set(
	ctx context.Context,
	trackingCode string,
	info *domain.TrackingInfo,
	ttl time.Duration,
) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode tracking cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+trackingCode, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tracking cache: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (c *RedisEventCache) Close() error {
	return c.client.Close()
}

var _ EventCache = (*RedisEventCache)(nil)
