package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"api-music/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:"app"`
	Music       Music       `mapstructure:"music"`
	Cache       Cache       `mapstructure:"cache"`
	RedisClient RedisClient `mapstructure:"redisClient"`
	Provider    Provider    `mapstructure:"provider"`
	RateLimit   RateLimit   `mapstructure:"rateLimit"`
	Cors        Cors        `mapstructure:"cors"`
}

// App holds the listener settings. TrustedProxies may set X-Forwarded-For; when empty the socket
// peer is the client address.
type App struct {
	Port           int      `mapstructure:"port"`
	TLSEnabled     bool     `mapstructure:"tlsEnabled"`
	TLSCertFile    string   `mapstructure:"tlsCertFile"`
	TLSKeyFile     string   `mapstructure:"tlsKeyFile"`
	TrustedProxies []string `mapstructure:"trustedProxies"`
}

// Music holds the catalog sources and search bounds
type Music struct {
	SourceURLs        []string `mapstructure:"sourceUrls"`
	SearchLimit       int      `mapstructure:"searchLimit"`
	SourceConcurrency int      `mapstructure:"sourceConcurrency"`
}

// Cache selects the stream cache backend. Capacity 0 leaves the memory cache unbounded.
type Cache struct {
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

type RedisClient struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Provider configures the media-metadata provider
type Provider struct {
	Kind          string        `mapstructure:"kind"`
	Binary        string        `mapstructure:"binary"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SocketTimeout int           `mapstructure:"socketTimeout"`
	Retries       int           `mapstructure:"retries"`
	MaxConcurrent int           `mapstructure:"maxConcurrent"`
	YouTubeAPIKey string        `mapstructure:"youtubeApiKey"`
}

type RateLimit struct {
	PerMinute int `mapstructure:"perMinute"`
}

type Cors struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	ProviderYtDlp   = "ytdlp"
	ProviderYouTube = "youtube"
)

// DefaultSourceURLs are the YouTube Music channels aggregated by GET /get_artist_songs.
var DefaultSourceURLs = []string{
	"https://music.youtube.com/channel/UCJls2FMEbRYxi28jcuKe2vA", // Avenged Sevenfold
	"https://music.youtube.com/channel/UC527A_XB_c7XftocVOIVNeA", // My Chemical Romance
	"https://music.youtube.com/channel/UCRI-Ds5eY70A4oeHggAFBbg", // Rex Orange County
	"https://music.youtube.com/channel/UCZn4r7heNOPY-C43YIywnVA", // Bruno Mars
	"https://music.youtube.com/channel/UCn0hl0XZ3bFREX2SCBZK3Pw", // Dewa 19
	"https://music.youtube.com/channel/UCYBtTmBP2QgHgalgsv2v5LA", // Juicy Luicy
	"https://music.youtube.com/channel/UCUn9Xjvg8fwqpa58-_XO6zw", // Bernadya
}

var C Config

func setDefaults() {
	viper.SetDefault("app.port", 8000)
	viper.SetDefault("app.tlsEnabled", false)
	viper.SetDefault("app.tlsCertFile", "")
	viper.SetDefault("app.tlsKeyFile", "")
	viper.SetDefault("app.trustedProxies", []string{})

	viper.SetDefault("music.sourceUrls", DefaultSourceURLs)
	viper.SetDefault("music.searchLimit", 10)
	viper.SetDefault("music.sourceConcurrency", 4)

	viper.SetDefault("cache.backend", CacheBackendMemory)
	viper.SetDefault("cache.ttl", 30*time.Minute)
	viper.SetDefault("cache.capacity", 10000)

	viper.SetDefault("redisClient.host", "localhost")
	viper.SetDefault("redisClient.port", "6379")
	viper.SetDefault("redisClient.username", "")
	viper.SetDefault("redisClient.password", "")
	viper.SetDefault("redisClient.db", 0)

	viper.SetDefault("provider.kind", ProviderYtDlp)
	viper.SetDefault("provider.binary", "yt-dlp")
	viper.SetDefault("provider.timeout", 60*time.Second)
	viper.SetDefault("provider.socketTimeout", 30)
	viper.SetDefault("provider.retries", 3)
	viper.SetDefault("provider.maxConcurrent", 4)
	viper.SetDefault("provider.youtubeApiKey", "")

	viper.SetDefault("rateLimit.perMinute", 100)
	viper.SetDefault("cors.allowOrigins", []string{"*"})
}

func LoadConfig() {
	name := getConfig()
	setDefaults()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	initApp(&C)
	initProvider(&C)
	logger.GetLogger().WithFields(map[string]interface{}{
		"config":       name,
		"sources":      len(C.Music.SourceURLs),
		"cacheBackend": C.Cache.Backend,
		"cacheTTL":     C.Cache.TTL.String(),
		"provider":     C.Provider.Kind,
	}).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 8000
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 8000
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.Cache.TTL <= 0 {
		logger.GetLogger().WithField("ttl", C.Cache.TTL.String()).Warn("Invalid cache TTL, using 30m")
		C.Cache.TTL = 30 * time.Minute
	}
	if C.Music.SearchLimit <= 0 {
		C.Music.SearchLimit = 10
	}
}

func initProvider(C *Config) {
	// The conventional env name wins over the provider_youtubeApiKey form
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		C.Provider.YouTubeAPIKey = v
	}
	if C.Provider.Kind == ProviderYouTube && C.Provider.YouTubeAPIKey == "" {
		logger.GetLogger().Warn("provider.kind is youtube but no API key is set; falling back to yt-dlp")
		C.Provider.Kind = ProviderYtDlp
	}
	if C.Provider.Timeout <= 0 {
		C.Provider.Timeout = 60 * time.Second
	}
	if C.Provider.MaxConcurrent <= 0 {
		C.Provider.MaxConcurrent = 1
	}
}
