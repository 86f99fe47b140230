package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"api-music/infrastructure/configuration"
	"api-music/infrastructure/logger"
	httpHandler "api-music/interfaces/http"
	"api-music/interfaces/middleware"
	"api-music/server"
)

const shutdownTimeout = 10 * time.Second

// jsonOutput marks commands whose stdout is a JSON document; their logs go to stderr.
var jsonOutput = map[string]string{"output": "json"}

var (
	logLevel string
	port     int
)

var rootCmd = &cobra.Command{
	Use:   "api-music",
	Short: "Music catalog, stream resolution and search API",
	Long: `api-music aggregates tracks from a fixed set of YouTube Music channels, resolves a track id
to a playable audio stream and searches the catalog, backed by yt-dlp or the YouTube Data API.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if printsJSON(cmd) {
			logger.SetOutput(cmd.ErrOrStderr())
		}
		if logLevel != "" {
			logger.SetLevel(logLevel)
		}
		initConfig()
	},
	RunE:         runServe,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var resolveCmd = &cobra.Command{
	Use:         "resolve <video_id>",
	Short:       "Print the stream URL of a track",
	Args:        cobra.ExactArgs(1),
	Annotations: jsonOutput,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, app *application) (interface{}, error) {
			streamURL, err := app.music.ResolveStream(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return map[string]string{"stream_url": streamURL}, nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:         "search <query>",
	Short:       "Search tracks",
	Args:        cobra.MinimumNArgs(1),
	Annotations: jsonOutput,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, app *application) (interface{}, error) {
			return app.music.Search(ctx, strings.Join(args, " "))
		})
	},
}

var catalogCmd = &cobra.Command{
	Use:         "catalog",
	Short:       "Print the tracks of every configured source",
	Args:        cobra.NoArgs,
	Annotations: jsonOutput,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApplication(cmd, func(ctx context.Context, app *application) (interface{}, error) {
			return app.music.GetCatalog(ctx)
		})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides LOG_LEVEL")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP port, overrides app.port")
	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP port, overrides app.port")

	rootCmd.AddCommand(serveCmd, resolveCmd, searchCmd, catalogCmd)
}

func initConfig() {
	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.LoadConfig()
}

func printsJSON(cmd *cobra.Command) bool {
	return cmd.Annotations["output"] == "json"
}

// buildApplication is replaced in tests to run commands without a media provider.
var buildApplication = newApplication

func withApplication(cmd *cobra.Command, run func(ctx context.Context, app *application) (interface{}, error)) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := buildApplication(ctx, configuration.C)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := run(ctx, app)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := configuration.C
	if port > 0 {
		cfg.App.Port = port
	}

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)
	router := server.InitiateRouter(
		httpHandler.NewMusicHandler(app.music),
		httpHandler.NewHealthHandler(),
		server.Options{
			AllowOrigins:   cfg.Cors.AllowOrigins,
			TrustedProxies: cfg.App.TrustedProxies,
			RateLimiter:    rateLimiter,
			Metrics:        app.metrics.Handler(),
			Logger:         logger.Base(),
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.GetLogger().WithFields(map[string]interface{}{"port": cfg.App.Port, "tls": cfg.App.TLSEnabled}).Info("Starting application")
		return listen(httpServer, cfg.App)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		rateLimiter.Run(gCtx)
		return nil
	})

	if app.memoryCache != nil {
		g.Go(func() error {
			app.memoryCache.RunJanitor(gCtx, max(cfg.Cache.TTL/2, time.Second), func(removed int) {
				logger.GetLogger().WithField("removed", removed).Debug("Purged expired stream cache entries")
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application stopped with error")
		return err
	}
	logger.GetLogger().Info("Application stopped gracefully")
	return nil
}

func listen(httpServer *http.Server, app configuration.App) error {
	var err error
	if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
		logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
		err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
	} else {
		if app.TLSEnabled {
			logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
		}
		err = httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
