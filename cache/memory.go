package cache

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure InMemoryCache implements Cache.
var _ Cache = (*InMemoryCache)(nil)

type cacheEntry struct {
	results   []jobs.RankedResult
	expiresAt time.Time
}

// InMemoryCache is a Cache with a fixed capacity whose entries expire after
// a TTL.
type InMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	clock    clock.Clock
}

// NewInMemoryCache returns an empty cache. A zero ttl uses DefaultTTL, a
// capacity below 1 means 1000 entries and a nil clk uses the wall clock.
func NewInMemoryCache(ttl time.Duration, capacity int, clk clock.Clock) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if capacity < 1 {
		capacity = 1000
	}

	if clk == nil {
		clk = clock.WallClock
	}

	return &InMemoryCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		clock:    clk,
	}
}

// Get implements Cache.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]jobs.RankedResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	if !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)

		return nil, false, nil
	}

	return cloneResults(entry.results), true, nil
}

// Set implements Cache. When the cache is full, expired entries are purged
// first and then the entry closest to expiry is evicted.
func (c *InMemoryCache) Set(_ context.Context, key string, results []jobs.RankedResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evict(now)
	}

	c.entries[key] = cacheEntry{
		results:   cloneResults(results),
		expiresAt: now.Add(c.ttl),
	}

	return nil
}

// Len returns the number of entries currently held, expired or not.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *InMemoryCache) evict(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)

			continue
		}

		if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.expiresAt
		}
	}

	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
