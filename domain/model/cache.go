package model

import "time"

// StreamCacheKeyPrefix namespaces resolved stream URLs inside a shared cache.
const StreamCacheKeyPrefix = "stream:"

// CacheEntry is a value stored in the expiring cache together with its insertion time
type CacheEntry struct {
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Expired reports whether the entry is at least ttl old at now.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) >= ttl
}

// StreamCacheKey returns the cache key under which the stream URL of trackID is stored.
func StreamCacheKey(trackID string) string {
	return StreamCacheKeyPrefix + trackID
}
