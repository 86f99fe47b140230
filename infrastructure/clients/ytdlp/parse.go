package ytdlp

import (
	"fmt"

	"github.com/tidwall/gjson"

	"api-music/domain/model"
)

// parseListing reads a --dump-single-json document. Empty output, null and {} yield a nil listing.
func parseListing(out []byte) (*model.SourceListing, error) {
	doc := gjson.ParseBytes(out)
	if len(out) == 0 || doc.Type == gjson.Null {
		return nil, nil
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: unexpected listing document", model.ErrProviderUnavailable)
	}
	if len(doc.Map()) == 0 {
		return nil, nil
	}

	listing := &model.SourceListing{
		SourceName: doc.Get("channel").String(),
	}
	if listing.SourceName == "" {
		listing.SourceName = doc.Get("uploader").String()
	}

	doc.Get("entries").ForEach(func(_, value gjson.Result) bool {
		listing.Entries = append(listing.Entries, parseEntry(value))
		return true
	})
	return listing, nil
}

func parseEntry(value gjson.Result) *model.ProviderEntry {
	if !value.IsObject() {
		return nil
	}

	entry := &model.ProviderEntry{
		ID:        value.Get("id").String(),
		Title:     value.Get("title").String(),
		Thumbnail: value.Get("thumbnail").String(),
	}
	// flat entries usually carry a thumbnails list, largest last
	if entry.Thumbnail == "" {
		thumbnails := value.Get("thumbnails").Array()
		for i := len(thumbnails) - 1; i >= 0; i-- {
			if url := thumbnails[i].Get("url").String(); url != "" {
				entry.Thumbnail = url
				break
			}
		}
	}
	if duration := value.Get("duration"); duration.Type == gjson.Number {
		seconds := duration.Float()
		entry.Duration = &seconds
	}
	return entry
}

// parseFormats reads the formats array of a single video document.
func parseFormats(out []byte) (*model.FormatListing, error) {
	doc := gjson.ParseBytes(out)
	if len(out) == 0 || doc.Type == gjson.Null {
		return &model.FormatListing{}, nil
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: unexpected video document", model.ErrProviderUnavailable)
	}

	formats := doc.Get("formats")
	if !formats.IsArray() {
		return &model.FormatListing{}, nil
	}

	items := formats.Array()
	listing := &model.FormatListing{Formats: make([]model.DeliveryFormat, 0, len(items))}
	for _, f := range items {
		listing.Formats = append(listing.Formats, model.DeliveryFormat{
			AudioCodec: f.Get("acodec").String(),
			VideoCodec: f.Get("vcodec").String(),
			Quality:    f.Get("quality").Float(),
			URL:        f.Get("url").String(),
		})
	}
	return listing, nil
}
