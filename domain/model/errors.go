package model

import "errors"

var (
	// ErrProviderUnavailable wraps network and extraction failures of the media provider.
	ErrProviderUnavailable = errors.New("media provider unavailable")
	// ErrNoPlayableFormat means the provider answered but offered no audio-only format.
	ErrNoPlayableFormat = errors.New("no playable audio format")
	// ErrResolutionFailed means the provider call failed or returned no format list.
	ErrResolutionFailed = errors.New("stream resolution failed")
	// ErrEmptyAggregate means no configured source produced a batch.
	ErrEmptyAggregate = errors.New("no artists or songs found")
	ErrInvalidTrackID = errors.New("track id is required")
	ErrEmptyQuery     = errors.New("search query is required")
)

// IsStreamUnavailable reports whether err is one of the resolution outcomes that map to not found.
func IsStreamUnavailable(err error) bool {
	return errors.Is(err, ErrResolutionFailed) || errors.Is(err, ErrNoPlayableFormat)
}
