// Package server exposes a running pipeline over a small HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/middleware"
	"github.com/valpere/pogoda/internal/pipeline"
	"github.com/valpere/pogoda/internal/version"
	"github.com/valpere/pogoda/internal/view"
	"github.com/valpere/pogoda/pkg/metrics"
)

const refreshTimeout = 10 * time.Second

// Pipeline is the part of *pipeline.Pipeline the API drives.
type Pipeline interface {
	State() pipeline.State
	SetQuery(text string)
	SelectIndex(i int) error
	ResetSuggestions()
	Refresh() <-chan struct{}
}

type queryRequest struct {
	Query *string `json:"query" binding:"required"`
}

type selectRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type Server struct {
	cfg      *config.ServerConfig
	pipeline Pipeline
	renderer *view.Renderer
	logger   *zerolog.Logger
	metrics  *metrics.Metrics
	router   *gin.Engine
	httpSrv  *http.Server
}

func New(cfg *config.ServerConfig, p Pipeline, renderer *view.Renderer, logger *zerolog.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		renderer: renderer,
		logger:   logger,
		metrics:  m,
	}
	s.setupRouter()

	s.httpSrv = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.Metrics(s.metrics))
	if s.cfg.RateLimit > 0 {
		router.Use(middleware.RateLimit(middleware.NewClientRateLimiter(rate.Limit(s.cfg.RateLimit), max(s.cfg.RateBurst, 1))))
	}

	router.GET("/health", s.health)
	router.GET("/version", s.versionInfo)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	router.GET("/state", s.state)
	router.PUT("/query", s.setQuery)
	router.POST("/select", s.selectSuggestion)
	router.POST("/refresh", s.refresh)
	router.POST("/reset", s.reset)
	router.GET("/weather/card", s.card)

	s.router = router
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info().Int("port", s.cfg.Port).Msg("HTTP server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "healthy",
		"version":               version.Version,
		"time":                  time.Now().Unix(),
		"weather_api_avg_ms":    s.metrics.GetAverageResponseTime(),
		"search_cache_hit_rate": s.metrics.GetCacheHitRate("search"),
	})
}

func (s *Server) versionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetInfo())
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.State())
}

func (s *Server) setQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.pipeline.SetQuery(*req.Query)
	c.Status(http.StatusAccepted)
}

func (s *Server) selectSuggestion(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch err := s.pipeline.SelectIndex(*req.Index); {
	case err == nil:
		c.JSON(http.StatusAccepted, s.pipeline.State())
	case errors.Is(err, pipeline.ErrNoSuggestion):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	}
}

func (s *Server) refresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), refreshTimeout)
	defer cancel()

	select {
	case <-s.pipeline.Refresh():
		c.JSON(http.StatusOK, s.pipeline.State())
	case <-ctx.Done():
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "refresh did not complete"})
	}
}

func (s *Server) reset(c *gin.Context) {
	s.pipeline.ResetSuggestions()
	c.Status(http.StatusNoContent)
}

func (s *Server) card(c *gin.Context) {
	st := s.pipeline.State()
	if st.Weather == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no weather loaded"})
		return
	}

	c.String(http.StatusOK, strings.Join(s.renderer.WeatherCard(st.Weather), "\n"))
}
