package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ammiranda/notetree/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "notetree:forest:"

// RedisCache implements CacheProvider using Redis. Forests are stored as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache provider for addr (host:port)
func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return &RedisCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

// Initialize checks that the server is reachable
func (c *RedisCache) Initialize() error {
	ctx := context.Background()
	_, err := c.client.Ping(ctx).Result()
	return err
}

// GetForest retrieves the forest from cache if available
func (c *RedisCache) GetForest(campaignID string) (models.Forest, bool) {
	ctx := context.Background()
	data, err := c.client.Get(ctx, redisKeyPrefix+campaignID).Bytes()
	if err != nil {
		return nil, false
	}

	var forest models.Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		logrus.WithError(err).WithField("campaign", campaignID).Warn("Dropping undecodable cached forest")
		c.InvalidateCache(campaignID)
		return nil, false
	}

	return forest, true
}

// SetForest stores the forest in cache
func (c *RedisCache) SetForest(campaignID string, forest models.Forest) {
	ctx := context.Background()
	data, err := json.Marshal(forest)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+campaignID, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("campaign", campaignID).Warn("Error caching forest in redis")
	}
}

// InvalidateCache removes the forest from cache
func (c *RedisCache) InvalidateCache(campaignID string) {
	ctx := context.Background()
	c.client.Del(ctx, redisKeyPrefix+campaignID)
}

// SetCacheTTL sets the cache time-to-live duration
func (c *RedisCache) SetCacheTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
