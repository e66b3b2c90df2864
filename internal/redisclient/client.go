// Package redisclient caches ranked search responses in Redis.
//
// Ranking is deterministic, so a cached response for the same
// (medicine, location, radius) is byte-identical to a recomputed one
// until stock changes. Every stock write bumps a per-medicine version
// counter that is part of the cache key, so stale rankings expire
// without key scans.
package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medicine-locator/internal/models"
	"medicine-locator/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a Redis-backed search response cache.
func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: util.GetLogger(),
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns a cached response, if any. Best-effort: Redis errors are
// logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, medicineID string, lat, lon, radiusMeters float64) (*models.SearchResponse, bool) {
	key, err := c.key(ctx, medicineID, lat, lon, radiusMeters)
	if err != nil {
		return nil, false
	}

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Search cache read failed", zap.Error(err))
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.logger.Warn("Search cache payload corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set stores a response. Best-effort.
func (c *Cache) Set(ctx context.Context, medicineID string, lat, lon, radiusMeters float64, resp *models.SearchResponse) {
	key, err := c.key(ctx, medicineID, lat, lon, radiusMeters)
	if err != nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("Search cache marshal failed", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Search cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the medicine's version counter so every cached
// response for it stops matching. Called on each applied stock update.
func (c *Cache) Invalidate(ctx context.Context, medicineID string) {
	if err := c.rdb.Incr(ctx, versionKey(medicineID)).Err(); err != nil {
		c.logger.Warn("Search cache invalidation failed",
			zap.String("medicine_id", medicineID),
			zap.Error(err))
	}
}

// key builds a version-qualified cache key. Location is rounded to
// three decimals (~110m) so nearby searches share entries.
func (c *Cache) key(ctx context.Context, medicineID string, lat, lon, radiusMeters float64) (string, error) {
	version, err := c.rdb.Get(ctx, versionKey(medicineID)).Int64()
	if err == redis.Nil {
		version = 0
	} else if err != nil {
		return "", err
	}

	return fmt.Sprintf("search:%s:v%d:%.3f:%.3f:%.0f",
		medicineID, version, lat, lon, radiusMeters), nil
}

func versionKey(medicineID string) string {
	return fmt.Sprintf("medversion:%s", medicineID)
}
