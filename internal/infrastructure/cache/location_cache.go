package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storefront/inventory/internal/domain/inventory"
)

const defaultLocationTTL = 5 * time.Minute

// Stats reports cache effectiveness
type Stats struct {
	Hits   int64
	Misses int64
}

// InMemoryLocationCache keeps the location list in process memory for a TTL.
// Callers always receive a copy.
type InMemoryLocationCache struct {
	mu        sync.RWMutex
	locations []inventory.Location
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewInMemoryLocationCache creates the cache; a non-positive ttl uses the default.
func NewInMemoryLocationCache(ttl time.Duration) *InMemoryLocationCache {
	if ttl <= 0 {
		ttl = defaultLocationTTL
	}
	return &InMemoryLocationCache{ttl: ttl, now: time.Now}
}

// Get implements LocationCache
func (c *InMemoryLocationCache) Get(ctx context.Context) ([]inventory.Location, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.locations == nil || c.now().After(c.expiresAt) {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return copyLocations(c.locations), true, nil
}

// Set implements LocationCache
func (c *InMemoryLocationCache) Set(ctx context.Context, locations []inventory.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locations = copyLocations(locations)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate implements LocationCache
func (c *InMemoryLocationCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locations = nil
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryLocationCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func copyLocations(locations []inventory.Location) []inventory.Location {
	out := make([]inventory.Location, len(locations))
	copy(out, locations)
	return out
}
