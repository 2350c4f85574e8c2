// Package cache provides caching of ledger read results.
package cache

import (
	"math/big"
	"sync"
	"time"

	"unigate/internal/metrics"
)

// DefaultStaleness is the duration after which entries are considered stale.
const DefaultStaleness = 30 * time.Second

type entry struct {
	value *big.Int
	at    time.Time
}

// PriceCache stores recent price reads keyed by name. Prices change every
// block; a short staleness window keeps the RPC node off the hot path of
// dashboard polling.
type PriceCache struct {
	mu        sync.RWMutex
	staleness time.Duration
	entries   map[string]entry
}

// NewPriceCache creates a cache with the given staleness window. Zero uses
// DefaultStaleness.
func NewPriceCache(staleness time.Duration) *PriceCache {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &PriceCache{
		staleness: staleness,
		entries:   make(map[string]entry),
	}
}

// Get returns the cached value for key if it is still fresh.
func (c *PriceCache) Get(key string) (*big.Int, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.at) > c.staleness {
		metrics.Global.RecordCacheMiss()
		return nil, false
	}
	metrics.Global.RecordCacheHit()
	return new(big.Int).Set(e.value), true
}

// Set stores a value under key.
func (c *PriceCache) Set(key string, value *big.Int) {
	c.mu.Lock()
	c.entries[key] = entry{value: new(big.Int).Set(value), at: time.Now()}
	c.mu.Unlock()
}

// Delete removes an entry.
func (c *PriceCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Size returns the number of entries, fresh or stale.
func (c *PriceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune removes entries older than maxAge and reports how many were dropped.
func (c *PriceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	for key, e := range c.entries {
		if time.Since(e.at) > maxAge {
			delete(c.entries, key)
			pruned++
		}
	}
	return pruned
}
