package model

import (
	"fmt"
	"strconv"
)

const (
	// WatchURLPrefix is the canonical playback page for a track id.
	WatchURLPrefix = "https://music.youtube.com/watch?v="
	// UnknownSourceName is used when the provider does not report a channel name.
	UnknownSourceName = "Unknown Artist"
	// UnknownDuration is reported when the provider omits a duration.
	UnknownDuration = "0"
)

// Track represents a single playable item of a catalog or search result
type Track struct {
	Title        string `json:"title"`
	PlaybackURL  string `json:"url"`
	ThumbnailURL string `json:"thumbnail"`
	Duration     string `json:"duration"`
	ID           string `json:"video_id"`
}

// CatalogBatch groups the tracks returned by one configured source
type CatalogBatch struct {
	SourceLocator string  `json:"artist_url"`
	SourceName    string  `json:"artist_name"`
	Tracks        []Track `json:"songs"`
}

// WatchURL builds the canonical watch page URL for a track id.
func WatchURL(trackID string) string {
	return WatchURLPrefix + trackID
}

// DefaultThumbnailURL is the conventional default image served for every track id.
func DefaultThumbnailURL(trackID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/default.jpg", trackID)
}

// NewTrack normalizes a provider entry. It reports false for nil entries and entries without an id.
func NewTrack(entry *ProviderEntry) (Track, bool) {
	if entry == nil || entry.ID == "" {
		return Track{}, false
	}

	thumbnail := entry.Thumbnail
	if thumbnail == "" {
		thumbnail = DefaultThumbnailURL(entry.ID)
	}

	duration := UnknownDuration
	if entry.Duration != nil {
		duration = strconv.FormatFloat(*entry.Duration, 'f', -1, 64)
	}

	return Track{
		Title:        entry.Title,
		PlaybackURL:  WatchURL(entry.ID),
		ThumbnailURL: thumbnail,
		Duration:     duration,
		ID:           entry.ID,
	}, true
}

// NewTracks normalizes entries in order, skipping the ones NewTrack rejects.
// The result is never nil so that it serializes as an empty JSON array.
func NewTracks(entries []*ProviderEntry) []Track {
	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		if track, ok := NewTrack(entry); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks
}
