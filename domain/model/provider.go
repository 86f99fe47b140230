package model

// ProviderEntry is a summary record returned by the media provider for listings and searches
type ProviderEntry struct {
	ID        string
	Title     string
	Thumbnail string
	// Duration in seconds, nil when the provider does not know it
	Duration *float64
}

// SourceListing is the flattened result of listing one source or running one search.
// A nil element in Entries stands for a null entry in the provider output.
type SourceListing struct {
	SourceName string
	Entries    []*ProviderEntry
}

// DeliveryFormat is one delivery candidate for a single track.
// Codec fields are empty when the provider omits them.
type DeliveryFormat struct {
	AudioCodec string  `json:"acodec,omitempty"`
	VideoCodec string  `json:"vcodec,omitempty"`
	Quality    float64 `json:"quality"`
	URL        string  `json:"url"`
}

// FormatListing holds the delivery candidates of a single track.
// Formats is nil when the provider returned no format list at all.
type FormatListing struct {
	Formats []DeliveryFormat
}

// IsAudioOnly reports whether the format carries audio and no video.
func (f DeliveryFormat) IsAudioOnly() bool {
	hasAudio := f.AudioCodec != "" && f.AudioCodec != "none"
	hasVideo := f.VideoCodec != "" && f.VideoCodec != "none"
	return hasAudio && !hasVideo
}
