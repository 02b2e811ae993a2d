package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheService provides Redis-backed caching for external-call results
// and chat session history.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// Cache TTLs per data class
const (
	AIResponseTTL  = 24 * time.Hour   // comparison reports are deterministic per payload
	LiveSummaryTTL = 15 * time.Minute // live player facts go stale quickly
	TVCountriesTTL = 6 * time.Hour    // broadcast schedules rarely move
)

// NewCacheService creates a new cache service instance.
func NewCacheService(redisClient *redis.Client, logger *logrus.Logger) *CacheService {
	return &CacheService{client: redisClient, logger: logger}
}

// BuildKey constructs consistent namespaced cache keys.
func (c *CacheService) BuildKey(elements ...string) string {
	return fmt.Sprintf("scoutx:%s", strings.Join(elements, ":"))
}

// Set stores a value in cache with TTL.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to set cache value")
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"key": key,
		"ttl": ttl.String(),
	}).Debug("Cached value successfully")
	return nil
}

// Get retrieves a value from cache into dest. A miss returns
// redis.Nil so callers can distinguish it from transport errors.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return err
		}
		c.logger.WithError(err).WithField("key", key).Error("Failed to get cache value")
		return err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to unmarshal cache value")
		return err
	}

	c.logger.WithField("key", key).Debug("Cache hit")
	return nil
}

// Delete removes a value from cache.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
