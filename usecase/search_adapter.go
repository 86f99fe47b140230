package usecase

import (
	"context"
	"fmt"
	"time"

	"api-music/domain/model"
	"api-music/domain/repository"
	"api-music/infrastructure/metrics"
)

// DefaultSearchLimit caps search results when no limit is configured
const DefaultSearchLimit = 10

// SearchAdapter runs bounded text searches against the provider
type SearchAdapter struct {
	provider repository.IMediaProvider
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func NewSearchAdapter(provider repository.IMediaProvider, timeout time.Duration, m *metrics.Metrics) *SearchAdapter {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &SearchAdapter{
		provider: provider,
		metrics:  m,
		timeout:  timeout,
	}
}

// Search issues one provider request for limit results and normalizes the entries.
// No results is an empty, non-nil slice.
func (s *SearchAdapter) Search(ctx context.Context, query string, limit int) ([]model.Track, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	listing, err := s.provider.Search(ctx, query, limit)
	s.metrics.RecordProviderCall(metrics.OperationSearch, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	if listing == nil {
		return []model.Track{}, nil
	}

	tracks := model.NewTracks(listing.Entries)
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}
