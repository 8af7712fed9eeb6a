package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/jgoulah/usagegrid/pkg/models"
)

const dashboardKey = "dashboard"

// Cache holds the processed dashboard between fetches
type Cache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// New creates a cache whose entries expire after ttl
func New(ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	return &Cache{cache: c, ttl: ttl}, nil
}

// Dashboard returns the cached dashboard, if still fresh
func (c *Cache) Dashboard() (*models.Dashboard, bool) {
	v, ok := c.cache.Get(dashboardKey)
	if !ok {
		return nil, false
	}
	dash, ok := v.(*models.Dashboard)
	return dash, ok
}

// SetDashboard stores a dashboard and waits until it is visible to readers
func (c *Cache) SetDashboard(dash *models.Dashboard) {
	c.cache.SetWithTTL(dashboardKey, dash, 1, c.ttl)
	c.cache.Wait()
}

// Invalidate drops the cached dashboard so the next read refetches
func (c *Cache) Invalidate() {
	c.cache.Del(dashboardKey)
}

// Close stops the cache's background goroutines
func (c *Cache) Close() {
	c.cache.Close()
}
