package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"api-music/domain/model"
)

// maxPageSize is the largest page the Data API serves for list calls
const maxPageSize = 50

// FormatLister resolves delivery formats, which the Data API does not expose
type FormatLister interface {
	ListFormats(ctx context.Context, watchURL string) (*model.FormatListing, error)
}

// Client represents a read-only YouTube Data API media provider
type Client struct {
	service *youtube.Service
	formats FormatLister
}

// Config represents YouTube API configuration
type Config struct {
	APIKey string `json:"api_key"`
}

// NewYouTubeClient creates a provider in API key mode. Format lookups go to formats.
func NewYouTubeClient(ctx context.Context, config *Config, formats FormatLister, opts ...option.ClientOption) (*Client, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}
	if formats == nil {
		return nil, fmt.Errorf("youtube provider needs a format lister")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
	}

	return &Client{
		service: service,
		formats: formats,
	}, nil
}

// ListFlat lists the latest uploads of a channel locator such as https://music.youtube.com/channel/UC...
// An unknown channel yields a nil listing.
func (c *Client) ListFlat(ctx context.Context, locator string) (*model.SourceListing, error) {
	channelID, err := ChannelIDFromLocator(locator)
	if err != nil {
		return nil, err
	}

	channels, err := c.service.Channels.List([]string{"snippet", "contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get channel %s: %v", model.ErrProviderUnavailable, channelID, err)
	}
	if len(channels.Items) == 0 {
		return nil, nil
	}

	channel := channels.Items[0]
	listing := &model.SourceListing{}
	if channel.Snippet != nil {
		listing.SourceName = channel.Snippet.Title
	}
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil ||
		channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		return listing, nil
	}

	items, err := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(channel.ContentDetails.RelatedPlaylists.Uploads).
		MaxResults(maxPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get uploads of %s: %v", model.ErrProviderUnavailable, channelID, err)
	}

	for _, item := range items.Items {
		listing.Entries = append(listing.Entries, convertPlaylistItem(item))
	}
	if err := c.fillDurations(ctx, listing.Entries); err != nil {
		return nil, err
	}
	return listing, nil
}

// Search runs a video search bounded to limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) (*model.SourceListing, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	response, err := c.service.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search videos: %v", model.ErrProviderUnavailable, err)
	}

	listing := &model.SourceListing{}
	for _, item := range response.Items {
		listing.Entries = append(listing.Entries, convertSearchResult(item))
	}
	if err := c.fillDurations(ctx, listing.Entries); err != nil {
		return nil, err
	}
	return listing, nil
}

// ListFormats delegates to the configured format lister.
func (c *Client) ListFormats(ctx context.Context, watchURL string) (*model.FormatListing, error) {
	return c.formats.ListFormats(ctx, watchURL)
}

// fillDurations looks up contentDetails for every entry with an id.
func (c *Client) fillDurations(ctx context.Context, entries []*model.ProviderEntry) error {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry != nil && entry.ID != "" {
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	response, err := c.service.Videos.List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: failed to get video details: %v", model.ErrProviderUnavailable, err)
	}

	durations := make(map[string]float64, len(response.Items))
	for _, video := range response.Items {
		if video.ContentDetails == nil {
			continue
		}
		if seconds, ok := ParseISODuration(video.ContentDetails.Duration); ok {
			durations[video.Id] = seconds
		}
	}

	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if seconds, ok := durations[entry.ID]; ok {
			entry.Duration = &seconds
		}
	}
	return nil
}

func convertPlaylistItem(item *youtube.PlaylistItem) *model.ProviderEntry {
	if item == nil {
		return nil
	}

	entry := &model.ProviderEntry{}
	if item.ContentDetails != nil {
		entry.ID = item.ContentDetails.VideoId
	}
	if item.Snippet != nil {
		entry.Title = item.Snippet.Title
		entry.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
		if entry.ID == "" && item.Snippet.ResourceId != nil {
			entry.ID = item.Snippet.ResourceId.VideoId
		}
	}
	return entry
}

func convertSearchResult(item *youtube.SearchResult) *model.ProviderEntry {
	if item == nil {
		return nil
	}

	entry := &model.ProviderEntry{}
	if item.Id != nil {
		entry.ID = item.Id.VideoId
	}
	if item.Snippet != nil {
		entry.Title = item.Snippet.Title
		entry.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
	}
	return entry
}

// bestThumbnail picks the largest thumbnail available
func bestThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{
		thumbnails.Maxres,
		thumbnails.Standard,
		thumbnails.High,
		thumbnails.Medium,
		thumbnails.Default,
	} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

// ChannelIDFromLocator extracts the id following /channel/ in a channel URL.
func ChannelIDFromLocator(locator string) (string, error) {
	parsed, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid channel locator %q: %w", locator, err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "channel" && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("channel locator %q has no channel id", locator)
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration converts an ISO 8601 duration such as PT4M13S to seconds.
func ParseISODuration(raw string) (float64, bool) {
	match := isoDuration.FindStringSubmatch(raw)
	if match == nil || raw == "P" || strings.HasSuffix(raw, "T") {
		return 0, false
	}

	var total float64
	for i, unit := range []float64{86400, 3600, 60, 1} {
		part := match[i+1]
		if part == "" {
			continue
		}
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total += value * unit
	}
	return total, true
}
