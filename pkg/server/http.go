// Package server wraps the HTTP server lifecycle: startup, health and
// graceful shutdown on context cancellation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// HTTPServer is a gin-backed HTTP server with graceful shutdown.
type HTTPServer struct {
	engine *gin.Engine
	srv    *http.Server

	shutdownTimeout time.Duration
}

// New creates an HTTP server from cfg. Middleware and routes are
// registered on the returned Engine before calling Run.
func New(cfg Config) *HTTPServer {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	return &HTTPServer{
		engine: engine,
		srv: &http.Server{
			Addr:           cfg.Addr,
			Handler:        engine,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Engine returns the underlying gin engine for route registration.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Use attaches middleware to the engine.
func (s *HTTPServer) Use(middleware ...gin.HandlerFunc) {
	s.engine.Use(middleware...)
}

// Run starts the server and blocks until ctx is cancelled or the
// listener fails. On cancellation the server drains in-flight requests
// for up to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		zap.S().Infow("http server starting", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Infow("http server shutting down", "timeout", s.shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Warnw("http server forced to stop", "error", err)
		return err
	}

	zap.S().Infow("http server stopped")
	return <-errCh
}
