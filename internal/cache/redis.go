package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tipstream/harvester/pkg/config"
	"github.com/tipstream/harvester/pkg/logging"
)

var (
	// ErrCacheDisabled is returned when cache operations are attempted but
	// cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)

// watermarkTTL bounds staleness: a dropped key just costs one store rescan.
const watermarkTTL = 24 * time.Hour

// Cache wraps Redis client. A nil *Cache is valid and reports
// ErrCacheDisabled, so callers need no enabled-checks.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// GetWatermark returns the cached fetch watermark for a person, or "" on a
// miss
func (c *Cache) GetWatermark(ctx context.Context, platform, personID string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	mark, err := c.client.Get(ctx, watermarkKey(platform, personID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return mark, err
}

// SetWatermark caches the fetch watermark for a person
func (c *Cache) SetWatermark(ctx context.Context, platform, personID, textID string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, watermarkKey(platform, personID), textID, watermarkTTL).Err()
}

func watermarkKey(platform, personID string) string {
	return fmt.Sprintf("harvest:watermark:%s:%s", platform, personID)
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
