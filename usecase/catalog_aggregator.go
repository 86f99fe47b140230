package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"api-music/domain/model"
	"api-music/domain/repository"
	"api-music/infrastructure/logger"
	"api-music/infrastructure/metrics"
)

// CatalogAggregator lists every configured source and isolates per-source failures
type CatalogAggregator struct {
	provider    repository.IMediaProvider
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	concurrency int
	timeout     time.Duration
}

// NewCatalogAggregator creates an aggregator listing at most concurrency sources at once.
func NewCatalogAggregator(provider repository.IMediaProvider, concurrency int, timeout time.Duration, m *metrics.Metrics) *CatalogAggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &CatalogAggregator{
		provider:    provider,
		metrics:     m,
		log:         logger.Base(),
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// WithLogger replaces the logger (fluent)
func (a *CatalogAggregator) WithLogger(log logrus.FieldLogger) *CatalogAggregator {
	a.log = log
	return a
}

// Aggregate returns one batch per source that answered, in the order of locators.
// Failing sources are logged and skipped. Only cancellation of ctx is returned as an error.
func (a *CatalogAggregator) Aggregate(ctx context.Context, locators []string) ([]model.CatalogBatch, error) {
	results := make([]*model.CatalogBatch, len(locators))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, locator := range locators {
		i, locator := i, locator
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = a.collect(ctx, locator)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batches := make([]model.CatalogBatch, 0, len(locators))
	for _, batch := range results {
		if batch != nil {
			batches = append(batches, *batch)
		}
	}
	return batches, nil
}

func (a *CatalogAggregator) collect(ctx context.Context, locator string) *model.CatalogBatch {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	listing, err := a.provider.ListFlat(ctx, locator)
	a.metrics.RecordProviderCall(metrics.OperationListFlat, err, time.Since(start))

	log := a.log.WithField("source", locator)
	if err != nil {
		log.WithError(err).Warn("failed to list source, skipping")
		a.metrics.RecordSourceFailure()
		return nil
	}
	if listing == nil {
		log.Warn("source returned no result, skipping")
		a.metrics.RecordSourceFailure()
		return nil
	}

	name := listing.SourceName
	if name == "" {
		name = model.UnknownSourceName
	}
	return &model.CatalogBatch{
		SourceLocator: locator,
		SourceName:    name,
		Tracks:        model.NewTracks(listing.Entries),
	}
}
