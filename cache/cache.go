package cache

import (
	"fmt"
	"time"

	"github.com/ammiranda/notetree/config"
	"github.com/ammiranda/notetree/models"
)

// CacheProvider defines the interface for cache implementations.
// It caches the decoded note forest of each campaign.
type CacheProvider interface {
	// GetForest retrieves the forest of a campaign from cache if available.
	// Returns the forest and whether it was found.
	GetForest(campaignID string) (models.Forest, bool)

	// SetForest stores the forest of a campaign in cache.
	SetForest(campaignID string, forest models.Forest)

	// InvalidateCache removes the cached forest of a campaign.
	// This is typically called when the campaign is deleted.
	InvalidateCache(campaignID string)

	// SetCacheTTL sets the duration after which cached forests expire.
	SetCacheTTL(ttl time.Duration)

	// Initialize performs any necessary setup for the cache provider,
	// such as pinging a server or creating a table.
	Initialize() error
}

// New builds and initializes the provider selected by cfg
func New(cfg *config.CacheConfig) (CacheProvider, error) {
	var provider CacheProvider
	switch cfg.Backend {
	case config.CacheRedis:
		provider = NewRedisCache(cfg.RedisAddr)
	case config.CacheDynamoDB:
		dynamo, err := NewDynamoDBCache(cfg.TableName)
		if err != nil {
			return nil, fmt.Errorf("error creating dynamodb cache: %w", err)
		}
		provider = dynamo
	case config.CacheNone:
		provider = NoopCache{}
	default:
		provider = NewMemoryCache()
	}

	provider.SetCacheTTL(cfg.TTL)
	if err := provider.Initialize(); err != nil {
		return nil, fmt.Errorf("error initializing %s cache: %w", cfg.Backend, err)
	}
	return provider, nil
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) GetForest(string) (models.Forest, bool) { return nil, false }
func (NoopCache) SetForest(string, models.Forest)        {}
func (NoopCache) InvalidateCache(string)                 {}
func (NoopCache) SetCacheTTL(time.Duration)              {}
func (NoopCache) Initialize() error                      { return nil }
