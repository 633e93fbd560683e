package pricing

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Cache is a bounded TTL price cache owned by the pricing component
// and passed by handle. Bounded size plus expiry keeps the hot-path
// latency win of the old module-level cache without hidden global
// state.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	max     int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	price    decimal.Decimal
	storedAt time.Time
}

func NewCache(max int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry, max),
		max:     max,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache) Get(key string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return decimal.Zero, false
	}

	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return decimal.Zero, false
	}

	return entry.price, true
}

func (c *Cache) Set(key string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evictLocked()
	}

	c.entries[key] = cacheEntry{price: price, storedAt: c.now()}
}

// evictLocked drops expired entries, falling back to the oldest one
// when nothing has expired yet.
func (c *Cache) evictLocked() {
	now := c.now()

	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			continue
		}

		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.storedAt
		}
	}

	if len(c.entries) >= c.max && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
