package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"api-music/domain/repository"
	"api-music/infrastructure/cache"
	youtubeclient "api-music/infrastructure/clients/youtube"
	"api-music/infrastructure/clients/ytdlp"
	"api-music/infrastructure/configuration"
	"api-music/infrastructure/logger"
	"api-music/infrastructure/metrics"
	"api-music/usecase"
)

// application holds the wired use cases and the resources they own
type application struct {
	music   usecase.IMusicUseCase
	metrics *metrics.Metrics
	// memoryCache is nil when streams are cached in Redis
	memoryCache *cache.ExpiringCache
	redisClient *redis.Client
}

func newApplication(ctx context.Context, cfg configuration.Config) (*application, error) {
	m := metrics.New()

	provider, err := newMediaProvider(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}

	app := &application{metrics: m}
	streamCache := app.newStreamCache(ctx, cfg)

	timeout := cfg.Provider.Timeout
	app.music = usecase.NewMusicUseCase(
		usecase.NewCatalogAggregator(provider, cfg.Music.SourceConcurrency, timeout, m),
		usecase.NewStreamResolver(provider, streamCache, timeout, m),
		usecase.NewSearchAdapter(provider, timeout, m),
		usecase.MusicConfig{
			Sources:     cfg.Music.SourceURLs,
			SearchLimit: cfg.Music.SearchLimit,
		},
	)
	return app, nil
}

func newMediaProvider(ctx context.Context, cfg configuration.Provider) (repository.IMediaProvider, error) {
	ytdlpClient := ytdlp.NewClient(ytdlp.Config{
		Binary:        cfg.Binary,
		Timeout:       cfg.Timeout,
		SocketTimeout: cfg.SocketTimeout,
		Retries:       cfg.Retries,
		MaxConcurrent: cfg.MaxConcurrent,
	})

	switch cfg.Kind {
	case configuration.ProviderYtDlp, "":
		logger.GetLogger().WithField("binary", cfg.Binary).Info("Using yt-dlp media provider")
		return ytdlpClient, nil
	case configuration.ProviderYouTube:
		client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{APIKey: cfg.YouTubeAPIKey}, ytdlpClient)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("YouTube Data API client unavailable - falling back to yt-dlp")
			return ytdlpClient, nil
		}
		logger.GetLogger().Info("Using YouTube Data API media provider with yt-dlp stream resolution")
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

func (a *application) newStreamCache(ctx context.Context, cfg configuration.Config) repository.IStreamCache {
	if cfg.Cache.Backend == configuration.CacheBackendRedis {
		address := fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port)
		client, err := cache.NewCache(ctx, address, cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB)
		if err == nil {
			logger.GetLogger().WithField("address", address).Info("Redis stream cache initialized successfully.")
			a.redisClient = client
			return cache.NewRedisStreamCache(client, cfg.Cache.TTL)
		}
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing with in-memory stream cache")
	}

	a.memoryCache = cache.NewExpiringCache(cfg.Cache.TTL, cfg.Cache.Capacity)
	logger.GetLogger().WithFields(map[string]interface{}{
		"ttl":      cfg.Cache.TTL.String(),
		"capacity": cfg.Cache.Capacity,
	}).Info("In-memory stream cache initialized")
	return a.memoryCache
}

func (a *application) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to close redis client")
		}
	}
}
