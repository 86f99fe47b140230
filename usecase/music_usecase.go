package usecase

import (
	"context"
	"fmt"
	"strings"

	"api-music/domain/model"
)

// IMusicUseCase defines the operations exposed by the HTTP API and the CLI
type IMusicUseCase interface {
	// GetCatalog aggregates the configured sources. No batch at all is ErrEmptyAggregate.
	GetCatalog(ctx context.Context) ([]model.CatalogBatch, error)
	// ResolveStream returns a playable audio URL for a track id.
	ResolveStream(ctx context.Context, trackID string) (string, error)
	// Search returns up to the configured number of tracks. An empty result is not an error.
	Search(ctx context.Context, query string) ([]model.Track, error)
}

// MusicConfig is the static configuration of the music use case
type MusicConfig struct {
	Sources     []string
	SearchLimit int
}

// MusicUseCase implements IMusicUseCase on top of the aggregator, resolver and search adapter
type MusicUseCase struct {
	aggregator *CatalogAggregator
	resolver   *StreamResolver
	searcher   *SearchAdapter
	config     MusicConfig
}

// NewMusicUseCase creates a new music use case instance
func NewMusicUseCase(aggregator *CatalogAggregator, resolver *StreamResolver, searcher *SearchAdapter, config MusicConfig) IMusicUseCase {
	if config.SearchLimit <= 0 {
		config.SearchLimit = DefaultSearchLimit
	}
	return &MusicUseCase{
		aggregator: aggregator,
		resolver:   resolver,
		searcher:   searcher,
		config:     config,
	}
}

func (u *MusicUseCase) GetCatalog(ctx context.Context) ([]model.CatalogBatch, error) {
	batches, err := u.aggregator.Aggregate(ctx, u.config.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate catalog: %w", err)
	}
	if len(batches) == 0 {
		return nil, model.ErrEmptyAggregate
	}
	return batches, nil
}

func (u *MusicUseCase) ResolveStream(ctx context.Context, trackID string) (string, error) {
	return u.resolver.Resolve(ctx, strings.TrimSpace(trackID))
}

func (u *MusicUseCase) Search(ctx context.Context, query string) ([]model.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptyQuery
	}
	return u.searcher.Search(ctx, query, u.config.SearchLimit)
}
