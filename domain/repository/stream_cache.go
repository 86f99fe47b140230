package repository

import "context"

// IStreamCache stores resolved stream URLs for a bounded time
type IStreamCache interface {
	// Get returns the cached value and true on a hit. Expired entries are reported as misses.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value under key, overwriting any previous value and restarting its TTL.
	Put(ctx context.Context, key, value string) error
}
