package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"api-music/domain/dto"
	"api-music/domain/model"
	handler "api-music/interfaces/http"
)

type MockMusicUseCase struct {
	mock.Mock
}

func (m *MockMusicUseCase) GetCatalog(ctx context.Context) ([]model.CatalogBatch, error) {
	args := m.Called(ctx)
	batches, _ := args.Get(0).([]model.CatalogBatch)
	return batches, args.Error(1)
}

func (m *MockMusicUseCase) ResolveStream(ctx context.Context, trackID string) (string, error) {
	args := m.Called(ctx, trackID)
	return args.String(0), args.Error(1)
}

func (m *MockMusicUseCase) Search(ctx context.Context, query string) ([]model.Track, error) {
	args := m.Called(ctx, query)
	tracks, _ := args.Get(0).([]model.Track)
	return tracks, args.Error(1)
}

func newTestRouter(uc *MockMusicUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewMusicHandler(uc)
	r := gin.New()
	r.GET("/get_artist_songs", h.GetArtistSongs)
	r.GET("/get_stream_url/:video_id", h.GetStreamURL)
	r.GET("/search_songs", h.SearchSongs)
	r.GET("/healthz", handler.NewHealthHandler().Healthz)
	return r
}

func serve(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetArtistSongs(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("GetCatalog", mock.Anything).Return([]model.CatalogBatch{{
		SourceLocator: "https://music.youtube.com/channel/UC1",
		SourceName:    "Bernadya",
		Tracks: []model.Track{{
			Title:        "Untungnya",
			PlaybackURL:  model.WatchURL("abc"),
			ThumbnailURL: model.DefaultThumbnailURL("abc"),
			Duration:     "215",
			ID:           "abc",
		}},
	}}, nil)

	w := serve(newTestRouter(uc), "/get_artist_songs")
	require.Equal(t, http.StatusOK, w.Code)

	assert.JSONEq(t, `[{
		"artist_url": "https://music.youtube.com/channel/UC1",
		"artist_name": "Bernadya",
		"songs": [{
			"title": "Untungnya",
			"url": "https://music.youtube.com/watch?v=abc",
			"thumbnail": "https://i.ytimg.com/vi/abc/default.jpg",
			"duration": "215",
			"video_id": "abc"
		}]
	}]`, w.Body.String())
}

func TestGetArtistSongs_Empty(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("GetCatalog", mock.Anything).Return(nil, model.ErrEmptyAggregate)

	w := serve(newTestRouter(uc), "/get_artist_songs")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "no artists or songs found", body.Error)
}

func TestGetArtistSongs_Failure(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("GetCatalog", mock.Anything).Return(nil, context.DeadlineExceeded)

	w := serve(newTestRouter(uc), "/get_artist_songs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetStreamURL(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("ResolveStream", mock.Anything, "abc").Return("https://stream/opus", nil)

	w := serve(newTestRouter(uc), "/get_stream_url/abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stream_url": "https://stream/opus"}`, w.Body.String())
}

func TestGetStreamURL_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"no playable format", fmt.Errorf("track abc: %w", model.ErrNoPlayableFormat)},
		{"resolution failed", fmt.Errorf("%w: %w", model.ErrResolutionFailed, model.ErrProviderUnavailable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockMusicUseCase)
			uc.On("ResolveStream", mock.Anything, "abc").Return("", tt.err)

			w := serve(newTestRouter(uc), "/get_stream_url/abc")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, `{"error": "stream unavailable"}`, w.Body.String())
		})
	}
}

func TestGetStreamURL_InvalidID(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("ResolveStream", mock.Anything, " ").Return("", model.ErrInvalidTrackID)

	w := serve(newTestRouter(uc), "/get_stream_url/%20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSongs(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("Search", mock.Anything, "bernadya").Return([]model.Track{
		{Title: "one", PlaybackURL: model.WatchURL("a"), ThumbnailURL: "t", Duration: "0", ID: "a"},
	}, nil)

	w := serve(newTestRouter(uc), "/search_songs?query=bernadya")
	require.Equal(t, http.StatusOK, w.Code)

	var body []dto.SongResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "https://music.youtube.com/watch?v=a", body[0].PlaybackURL)
}

func TestSearchSongs_NoResults(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("Search", mock.Anything, "zzz").Return([]model.Track{}, nil)

	w := serve(newTestRouter(uc), "/search_songs?query=zzz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSearchSongs_MissingQuery(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("Search", mock.Anything, "").Return(nil, model.ErrEmptyQuery)

	w := serve(newTestRouter(uc), "/search_songs")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSongs_ProviderDown(t *testing.T) {
	uc := new(MockMusicUseCase)
	uc.On("Search", mock.Anything, "x").Return(nil, model.ErrProviderUnavailable)

	w := serve(newTestRouter(uc), "/search_songs?query=x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthz(t *testing.T) {
	w := serve(newTestRouter(new(MockMusicUseCase)), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
