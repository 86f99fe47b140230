package dto

import "api-music/domain/model"

// StreamURLResponse is returned by GET /get_stream_url/:video_id
type StreamURLResponse struct {
	StreamURL string `json:"stream_url"`
}

// ArtistSongsResponse is one element of GET /get_artist_songs
type ArtistSongsResponse = model.CatalogBatch

// SongResponse is one element of GET /search_songs
type SongResponse = model.Track

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
