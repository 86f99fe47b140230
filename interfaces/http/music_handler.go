package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"api-music/domain/dto"
	"api-music/domain/model"
	"api-music/infrastructure/logger"
	"api-music/usecase"
)

// IMusicHandler defines the music HTTP handlers
type IMusicHandler interface {
	GetArtistSongs(ctx *gin.Context)
	GetStreamURL(ctx *gin.Context)
	SearchSongs(ctx *gin.Context)
}

// MusicHandler implements IMusicHandler
type MusicHandler struct {
	musicUseCase usecase.IMusicUseCase
}

// NewMusicHandler creates a new music handler instance
func NewMusicHandler(musicUseCase usecase.IMusicUseCase) IMusicHandler {
	return &MusicHandler{
		musicUseCase: musicUseCase,
	}
}

// GetArtistSongs handles GET /get_artist_songs
func (h *MusicHandler) GetArtistSongs(ctx *gin.Context) {
	batches, err := h.musicUseCase.GetCatalog(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, model.ErrEmptyAggregate) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		logger.GetLogger().WithError(err).Error("failed to get artist songs")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get artist songs",
			"message": err.Error(),
		})
		return
	}

	response := make([]dto.ArtistSongsResponse, 0, len(batches))
	response = append(response, batches...)
	ctx.JSON(http.StatusOK, response)
}

// GetStreamURL handles GET /get_stream_url/:video_id
func (h *MusicHandler) GetStreamURL(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Video ID is required",
		})
		return
	}

	streamURL, err := h.musicUseCase.ResolveStream(ctx.Request.Context(), videoID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidTrackID):
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Video ID is required",
			})
		case model.IsStreamUnavailable(err):
			logger.GetLogger().WithError(err).WithField("video_id", videoID).Warn("stream unavailable")
			ctx.JSON(http.StatusNotFound, gin.H{
				"error": "stream unavailable",
			})
		default:
			logger.GetLogger().WithError(err).WithField("video_id", videoID).Error("failed to resolve stream")
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to resolve stream",
				"message": err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, dto.StreamURLResponse{StreamURL: streamURL})
}

// SearchSongs handles GET /search_songs?query=
func (h *MusicHandler) SearchSongs(ctx *gin.Context) {
	query := ctx.Query("query")

	tracks, err := h.musicUseCase.Search(ctx.Request.Context(), query)
	if err != nil {
		if errors.Is(err, model.ErrEmptyQuery) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "Search query (query) is required",
			})
			return
		}
		logger.GetLogger().WithError(err).WithField("query", query).Error("failed to search songs")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to search songs",
			"message": err.Error(),
		})
		return
	}

	response := make([]dto.SongResponse, 0, len(tracks))
	response = append(response, tracks...)
	ctx.JSON(http.StatusOK, response)
}
