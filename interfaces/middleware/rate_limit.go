package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"api-music/domain/dto"
)

const (
	// cleanupInterval is how often idle clients are dropped
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay silent before its bucket is forgotten
	idleTimeout = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	entries map[string]*clientEntry
	mutex   sync.Mutex
	now     func() time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client, refilled evenly over the minute.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Inf,
		entries: make(map[string]*clientEntry),
		now:     time.Now,
	}
	if perMinute > 0 {
		rl.limit = rate.Limit(float64(perMinute) / time.Minute.Seconds())
		rl.burst = perMinute
	}
	return rl
}

// Allow reports whether one more request from key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit == rate.Inf {
		return true
	}

	now := rl.now()

	rl.mutex.Lock()
	entry, exists := rl.entries[key]
	if !exists {
		entry = &clientEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = now
	rl.mutex.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Cleanup drops clients idle for longer than idle and returns how many were removed.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for key, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.entries)
}

// Run cleans up idle clients until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup(idleTimeout)
		case <-ctx.Done():
			return
		}
	}
}

// Middleware rejects requests over the limit of their client IP with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !rl.Allow(ctx.ClientIP()) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "rate limit exceeded",
			})
			return
		}
		ctx.Next()
	}
}
