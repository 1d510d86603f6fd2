// Package cache provides result memoization keyed by query fingerprint.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/service"
)

// DefaultTTL is the default lifetime of a cached resolution result.
const DefaultTTL = 24 * time.Hour

// entry represents a cached resolution result.
type entry struct {
	expiry time.Time
	result model.ResolutionResult
}

// MemoryCache is a thread-safe in-memory Cache backend with TTL expiry.
type MemoryCache struct {
	entries map[string]entry
	stopCh  chan struct{}
	mu      sync.RWMutex
}

var _ service.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache and starts its cleanup
// goroutine.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		stopCh:  make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retrieves a result if present and not expired.
func (c *MemoryCache) Get(_ context.Context, fingerprint string) (*model.ResolutionResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[fingerprint]
	if !exists || time.Now().After(e.expiry) {
		return nil, nil
	}

	result := e.result
	return &result, nil
}

// Put stores a result under the fingerprint. Last writer wins.
func (c *MemoryCache) Put(_ context.Context, fingerprint string, result *model.ResolutionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = entry{
		result: *result,
		expiry: time.Now().Add(ttl),
	}
	return nil
}

// Size returns the number of entries in the cache.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanup periodically removes expired entries.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.entries {
				if now.After(e.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	close(c.stopCh)
	return nil
}
