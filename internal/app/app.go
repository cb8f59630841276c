// Package app assembles a pipeline and its supporting services from config.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/database"
	"github.com/valpere/pogoda/internal/pipeline"
	"github.com/valpere/pogoda/internal/server"
	"github.com/valpere/pogoda/internal/storage"
	"github.com/valpere/pogoda/internal/version"
	"github.com/valpere/pogoda/internal/view"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
)

type App struct {
	config   *config.Config
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	redis    *redis.Client
	store    storage.Store
	renderer *view.Renderer
	pipeline *pipeline.Pipeline
	server   *server.Server
}

// NewLogger builds the root logger. An unknown level falls back to info.
func NewLogger(cfg *config.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// New connects storage and builds the pipeline. Logs go to logOut.
func New(cfg *config.Config, logOut io.Writer) (*App, error) {
	logger := NewLogger(&cfg.Logging, logOut)
	a := &App{
		config:   cfg,
		logger:   logger,
		metrics:  metrics.New(),
		renderer: view.NewRenderer(time.Local),
	}

	if cfg.UsesRedis() {
		rdb, err := database.ConnectRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redis = rdb
	}

	store, err := storage.Open(cfg, a.redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	a.store = store

	lastLocation := storage.NewLastLocation(store, cfg.Pipeline.StorageKey)
	a.pipeline = pipeline.New(a.newAPI(), lastLocation,
		pipeline.WithDebounce(cfg.Pipeline.Debounce),
		pipeline.WithLogger(&a.logger),
		pipeline.WithMetrics(a.metrics),
	)

	if cfg.Server.Enabled {
		a.server = server.New(&cfg.Server, a.pipeline, a.renderer, &a.logger, a.metrics)
	}

	a.logger.Info().
		Str("storage", cfg.Storage.Driver).
		Bool("search_cache", cfg.Cache.Enabled).
		Bool("server", cfg.Server.Enabled).
		Str("session_id", a.pipeline.SessionID()).
		Msg("Pogoda initialized")

	return a, nil
}

func (a *App) newAPI() weather.API {
	cfg := a.config.Weather
	client := weather.NewClient(cfg.APIKey,
		weather.WithBaseURL(cfg.BaseURL),
		weather.WithTimeout(cfg.Timeout),
		weather.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		weather.WithBreaker(weather.BreakerSettings{
			MaxRequests:         cfg.BreakerHalfOpenMaxReqs,
			Timeout:             cfg.BreakerTimeout,
			ConsecutiveFailures: cfg.BreakerFailures,
		}),
		weather.WithMetrics(a.metrics),
		weather.WithUserAgent(version.GetInfo().UserAgent()),
	)

	if a.config.Cache.Enabled && a.redis != nil {
		return weather.NewCachedAPI(client, a.redis, a.config.Cache.SearchTTL, &a.logger, a.metrics)
	}
	return client
}

func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

func (a *App) Renderer() *view.Renderer {
	return a.renderer
}

func (a *App) Logger() *zerolog.Logger {
	return &a.logger
}

// Run drives the pipeline, and the HTTP API when enabled, until ctx is done
// or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.pipeline.Run(gctx)
	})
	if a.server != nil {
		g.Go(func() error {
			return a.server.Start(gctx)
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases storage and the Redis connection.
func (a *App) Close() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
