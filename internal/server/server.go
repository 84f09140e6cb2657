// Package server exposes a loaded dataset over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"go.uber.org/zap"
)

// Server serves one dataset loaded at startup.
type Server struct {
	router *gin.Engine
	ds     *speclimits.Dataset
	logger *zap.Logger
}

// New creates a server for ds.
func New(ds *speclimits.Dataset, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		router: gin.New(),
		ds:     ds,
		logger: logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/sources", s.handleSources)
	api.GET("/options", s.handleOptions)
	api.GET("/measurements", s.handleMeasurements)
	api.GET("/limits", s.handleLimits)
	api.GET("/summary", s.handleSummary)
	api.GET("/export.csv", s.handleExportCSV)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
