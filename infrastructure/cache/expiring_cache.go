// Package cache holds the stream URL caches: an in-memory expiring cache and a Redis-backed one.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"api-music/domain/model"
)

// ExpiringCache is a thread-safe in-memory key/value store with a fixed TTL.
// Entries at least TTL old are never returned; they are dropped on access or by Purge.
// When capacity is positive the least recently written key is evicted on overflow.
type ExpiringCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]model.CacheEntry
	order   *lru.Cache[string, struct{}]
}

// Option customizes an ExpiringCache.
type Option func(*ExpiringCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ExpiringCache) {
		c.now = now
	}
}

// NewExpiringCache creates a cache whose entries live for ttl. capacity <= 0 means unbounded.
func NewExpiringCache(ttl time.Duration, capacity int, opts ...Option) *ExpiringCache {
	c := &ExpiringCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]model.CacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	if capacity > 0 {
		// onEvict runs inside Add/Remove, which are only called with c.mu held
		c.order, _ = lru.NewWithEvict[string, struct{}](capacity, func(key string, _ struct{}) {
			delete(c.entries, key)
		})
	}
	return c
}

// Get implements repository.IStreamCache. It never returns an error.
func (c *ExpiringCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.Expired(c.now(), c.ttl) {
		c.remove(key)
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Put implements repository.IStreamCache. It always overwrites and restarts the TTL.
func (c *ExpiringCache) Put(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = model.CacheEntry{
		Key:        key,
		Value:      value,
		InsertedAt: c.now(),
	}
	if c.order != nil {
		c.order.Add(key, struct{}{})
	}
	return nil
}

// Len returns the number of entries held, expired or not.
func (c *ExpiringCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every expired entry and returns how many were removed.
func (c *ExpiringCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.Expired(now, c.ttl) {
			c.remove(key)
			removed++
		}
	}
	return removed
}

// RunJanitor purges expired entries every interval until ctx is done.
func (c *ExpiringCache) RunJanitor(ctx context.Context, interval time.Duration, onPurge func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Purge(); removed > 0 && onPurge != nil {
				onPurge(removed)
			}
		}
	}
}

func (c *ExpiringCache) remove(key string) {
	delete(c.entries, key)
	if c.order != nil {
		c.order.Remove(key)
	}
}
