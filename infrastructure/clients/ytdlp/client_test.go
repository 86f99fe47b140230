package ytdlp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-music/domain/model"
)

type fakeRunner struct {
	mu    sync.Mutex
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

func (f *fakeRunner) lastArgs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestClient(runner *fakeRunner) *Client {
	return NewClient(Config{
		Binary:        "yt-dlp",
		SocketTimeout: 30,
		Retries:       3,
		MaxConcurrent: 2,
	}, WithRunner(runner.run))
}

const channelDoc = `{
	"channel": "Bernadya",
	"uploader": "Bernadya Official",
	"entries": [
		{"id": "abc", "title": "Untungnya", "duration": 215, "thumbnails": [{"url": "https://img/small.jpg"}, {"url": "https://img/large.jpg"}]},
		null,
		{"id": "", "title": "broken"},
		{"id": "def", "title": "Satu Bulan", "duration": null, "thumbnail": "https://img/def.jpg"}
	]
}`

func TestListFlat(t *testing.T) {
	runner := &fakeRunner{out: channelDoc}
	client := newTestClient(runner)

	listing, err := client.ListFlat(context.Background(), "https://music.youtube.com/channel/UC1")
	require.NoError(t, err)
	require.NotNil(t, listing)

	assert.Equal(t, "Bernadya", listing.SourceName)
	require.Len(t, listing.Entries, 4)

	first := listing.Entries[0]
	assert.Equal(t, "abc", first.ID)
	assert.Equal(t, "https://img/large.jpg", first.Thumbnail)
	require.NotNil(t, first.Duration)
	assert.Equal(t, 215.0, *first.Duration)

	assert.Nil(t, listing.Entries[1])
	assert.Equal(t, "", listing.Entries[2].ID)

	last := listing.Entries[3]
	assert.Equal(t, "https://img/def.jpg", last.Thumbnail)
	assert.Nil(t, last.Duration)

	assert.Equal(t, []string{
		"yt-dlp",
		"--dump-single-json", "--no-warnings", "--no-check-certificates",
		"--socket-timeout", "30", "--retries", "3",
		"--flat-playlist", "--ignore-errors", "--", "https://music.youtube.com/channel/UC1",
	}, runner.lastArgs())
}

func TestListFlat_UploaderFallback(t *testing.T) {
	client := newTestClient(&fakeRunner{out: `{"uploader": "Someone", "entries": []}`})

	listing, err := client.ListFlat(context.Background(), "https://example/channel/x")
	require.NoError(t, err)
	assert.Equal(t, "Someone", listing.SourceName)
	assert.Empty(t, listing.Entries)
}

func TestListFlat_NullOrEmptyDocument(t *testing.T) {
	for _, out := range []string{"null", "{}", " { } "} {
		t.Run(out, func(t *testing.T) {
			client := newTestClient(&fakeRunner{out: out})

			listing, err := client.ListFlat(context.Background(), "https://example/channel/x")
			require.NoError(t, err)
			assert.Nil(t, listing)
		})
	}
}

func TestListFlat_PartialFailureKeepsOutput(t *testing.T) {
	client := newTestClient(&fakeRunner{out: channelDoc, err: errors.New("exit status 1")})

	listing, err := client.ListFlat(context.Background(), "https://example/channel/x")
	require.NoError(t, err)
	assert.Len(t, listing.Entries, 4)
}

func TestSearch(t *testing.T) {
	runner := &fakeRunner{out: `{"entries": [{"id": "a1", "title": "one"}, {"id": "b2", "title": "two"}]}`}
	client := newTestClient(runner)

	listing, err := client.Search(context.Background(), "bernadya", 10)
	require.NoError(t, err)
	assert.Len(t, listing.Entries, 2)

	args := runner.lastArgs()
	assert.Equal(t, "ytsearch10:bernadya", args[len(args)-1])
	assert.NotContains(t, args, "--ignore-errors")
}

func TestSearch_FailureIsProviderUnavailable(t *testing.T) {
	client := newTestClient(&fakeRunner{err: errors.New("exit status 1: network down")})

	_, err := client.Search(context.Background(), "bernadya", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestListFormats(t *testing.T) {
	runner := &fakeRunner{out: `{"id": "abc", "formats": [
		{"acodec": "opus", "vcodec": "none", "quality": 3, "url": "https://a/opus"},
		{"acodec": "none", "vcodec": "vp9", "quality": 8, "url": "https://v/vp9"},
		{"acodec": "mp4a.40.2", "quality": 2.5, "url": "https://a/m4a"}
	]}`}
	client := newTestClient(runner)

	listing, err := client.ListFormats(context.Background(), model.WatchURL("abc"))
	require.NoError(t, err)
	require.Len(t, listing.Formats, 3)

	assert.Equal(t, model.DeliveryFormat{AudioCodec: "opus", VideoCodec: "none", Quality: 3, URL: "https://a/opus"}, listing.Formats[0])
	assert.Equal(t, "", listing.Formats[2].VideoCodec)
	assert.Equal(t, 2.5, listing.Formats[2].Quality)

	args := runner.lastArgs()
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "bestaudio/best")
	assert.Equal(t, model.WatchURL("abc"), args[len(args)-1])
}

func TestListFormats_MissingFormats(t *testing.T) {
	client := newTestClient(&fakeRunner{out: `{"id": "abc"}`})

	listing, err := client.ListFormats(context.Background(), model.WatchURL("abc"))
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Nil(t, listing.Formats)
}

func TestListFormats_FailureIsNotPartial(t *testing.T) {
	client := newTestClient(&fakeRunner{out: `{"id": "abc", "formats": []}`, err: errors.New("exit status 1")})

	_, err := client.ListFormats(context.Background(), model.WatchURL("abc"))
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestCall_InvalidJSON(t *testing.T) {
	client := newTestClient(&fakeRunner{out: "ERROR: something"})

	_, err := client.ListFlat(context.Background(), "https://example/channel/x")
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestCall_WaitsForFreeSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := NewClient(Config{MaxConcurrent: 1}, WithRunner(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		close(started)
		<-release
		return []byte(`{"formats": []}`), nil
	}))

	go func() {
		_, _ = client.ListFormats(context.Background(), model.WatchURL("a"))
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.ListFormats(ctx, model.WatchURL("b"))
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)

	close(release)
}

func TestExecRunner(t *testing.T) {
	out, err := execRunner(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = execRunner(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
