package cache

import (
	"sync"
	"time"

	"github.com/ammiranda/notetree/models"
)

// MemoryCache implements CacheProvider using in-memory storage.
// Forests are immutable values, so they are stored without copying.
type MemoryCache struct {
	mu       sync.RWMutex
	data     map[string]models.Forest
	ttl      time.Duration
	expiries map[string]time.Time
	now      func() time.Time
}

// NewMemoryCache creates a new in-memory cache provider
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		ttl:      5 * time.Minute,
		data:     make(map[string]models.Forest),
		expiries: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *MemoryCache) Initialize() error {
	return nil
}

// GetForest retrieves the forest from cache if available
func (c *MemoryCache) GetForest(campaignID string) (models.Forest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expiry, exists := c.expiries[campaignID]
	if !exists || c.now().After(expiry) {
		return nil, false
	}

	forest, ok := c.data[campaignID]
	return forest, ok
}

// SetForest stores the forest in cache
func (c *MemoryCache) SetForest(campaignID string, forest models.Forest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[campaignID] = forest
	c.expiries[campaignID] = c.now().Add(c.ttl)
}

// InvalidateCache removes the cached forest of one campaign
func (c *MemoryCache) InvalidateCache(campaignID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, campaignID)
	delete(c.expiries, campaignID)
}

// SetCacheTTL sets the cache time-to-live duration
func (c *MemoryCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
	// Update all existing expiries
	now := c.now()
	for key := range c.data {
		c.expiries[key] = now.Add(ttl)
	}
}
