package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"api-music/domain/model"
	"api-music/domain/repository"
	"api-music/infrastructure/logger"
	"api-music/infrastructure/metrics"
)

// DefaultProviderTimeout bounds a single provider call when no timeout is configured
const DefaultProviderTimeout = 60 * time.Second

// StreamResolver turns a track id into a playable audio URL, cache first
type StreamResolver struct {
	provider repository.IMediaProvider
	cache    repository.IStreamCache
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	timeout  time.Duration
	group    singleflight.Group
}

// NewStreamResolver creates a resolver. metrics may be nil.
func NewStreamResolver(provider repository.IMediaProvider, cache repository.IStreamCache, timeout time.Duration, m *metrics.Metrics) *StreamResolver {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &StreamResolver{
		provider: provider,
		cache:    cache,
		metrics:  m,
		log:      logger.Base(),
		timeout:  timeout,
	}
}

// WithLogger replaces the logger (fluent)
func (r *StreamResolver) WithLogger(log logrus.FieldLogger) *StreamResolver {
	r.log = log
	return r
}

// Resolve returns the stream URL of trackID. Failed resolutions are never cached.
func (r *StreamResolver) Resolve(ctx context.Context, trackID string) (string, error) {
	if trackID == "" {
		return "", model.ErrInvalidTrackID
	}

	key := model.StreamCacheKey(trackID)
	if url, ok := r.lookup(ctx, key); ok {
		return url, nil
	}

	// concurrent misses for the same key share one provider call
	value, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.fetch(ctx, trackID, key)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (r *StreamResolver) lookup(ctx context.Context, key string) (string, bool) {
	url, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("stream cache read failed, treating as miss")
		ok = false
	}

	if ok {
		r.metrics.RecordCache(metrics.CacheHit)
	} else {
		r.metrics.RecordCache(metrics.CacheMiss)
	}
	return url, ok
}

func (r *StreamResolver) fetch(ctx context.Context, trackID, key string) (string, error) {
	// the flight outlives a single caller, so it keeps the values but not the cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	start := time.Now()
	listing, err := r.provider.ListFormats(ctx, model.WatchURL(trackID))
	r.metrics.RecordProviderCall(metrics.OperationListFormats, err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrResolutionFailed, err)
	}
	if listing == nil || listing.Formats == nil {
		return "", fmt.Errorf("%w: no format list for %s", model.ErrResolutionFailed, trackID)
	}

	url, err := SelectBestAudio(listing.Formats)
	if err != nil {
		return "", fmt.Errorf("track %s: %w", trackID, err)
	}

	if err := r.cache.Put(ctx, key, url); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("failed to cache stream url")
	}
	r.metrics.RecordStreamResolved()
	return url, nil
}
