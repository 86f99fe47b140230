package repository

import (
	"context"

	"api-music/domain/model"
)

// IMediaProvider is the external media-metadata capability used by the use cases
type IMediaProvider interface {
	// ListFlat lists the summary entries of one source without resolving them further.
	// A nil listing with a nil error means the provider found nothing for the locator.
	ListFlat(ctx context.Context, locator string) (*model.SourceListing, error)
	// ListFormats returns the delivery formats of the track behind watchURL.
	ListFormats(ctx context.Context, watchURL string) (*model.FormatListing, error)
	// Search runs a text query returning at most limit entries.
	Search(ctx context.Context, query string, limit int) (*model.SourceListing, error)
}
