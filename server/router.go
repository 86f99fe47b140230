package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"api-music/infrastructure/logger"
	httpHandler "api-music/interfaces/http"
	"api-music/interfaces/middleware"
)

// Options carries the cross-cutting pieces of the router. Only TrustedProxies may set the client
// address through X-Forwarded-For; with none, rate limiting keys on the socket peer.
type Options struct {
	AllowOrigins   []string
	TrustedProxies []string
	RateLimiter    *middleware.RateLimiter
	Metrics        http.Handler
	Logger         log.FieldLogger
}

func InitiateRouter(
	musicHandler httpHandler.IMusicHandler,
	healthHandler httpHandler.IHealthHandler,
	opts Options,
) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid trusted proxies - trusting none")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	if opts.Logger != nil {
		router.Use(middleware.RequestLogger(opts.Logger))
	}
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	router.GET("/healthz", healthHandler.Healthz)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := router.Group("/")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}
	api.GET("/get_artist_songs", musicHandler.GetArtistSongs)
	api.GET("/get_stream_url/:video_id", musicHandler.GetStreamURL)
	api.GET("/search_songs", musicHandler.SearchSongs)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}
