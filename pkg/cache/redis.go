package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// ErrMiss is returned when a key is absent from the cache.
var ErrMiss = errors.New("cache miss")

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache stores last-known-good snapshots so reads can degrade to
// recent data when a live source is unavailable.
type RedisCache struct {
	client  *redis.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity.
func NewRedisCache(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info(context.Background(), "[CACHE_INIT] Redis connection established", logging.Fields{
		"addr": cfg.Addr,
		"db":   cfg.DB,
	})

	return &RedisCache{
		client:  client,
		logger:  logger,
		metrics: metricsCollector,
	}, nil
}

// SetJSON marshals v and stores it under key with the given TTL.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.metrics.CacheErrorsTotal.Inc()
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}

	return nil
}

// GetJSON loads key and unmarshals it into dest. Returns ErrMiss when the
// key is absent or expired.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.metrics.CacheMissesTotal.Inc()
		return ErrMiss
	}
	if err != nil {
		c.metrics.CacheErrorsTotal.Inc()
		return fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.CacheErrorsTotal.Inc()
		return fmt.Errorf("failed to unmarshal cache key %s: %w", key, err)
	}

	c.metrics.CacheHitsTotal.Inc()
	return nil
}

// HealthCheck verifies the Redis connection is alive.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	c.logger.Info(context.Background(), "[CACHE_CLOSE] Closing redis connection", logging.Fields{})
	return c.client.Close()
}
