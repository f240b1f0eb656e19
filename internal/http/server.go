// Package http provides the admin API server and the metrics server.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// Options configures the admin API server.
type Options struct {
	Host string
	Port int

	// CORSEnabled and CORSAllowOrigins control browser access; disabled by
	// default.
	CORSEnabled      bool
	CORSAllowOrigins string

	// MetricsMiddleware, when non-nil, records per-request metrics.
	MetricsMiddleware gin.HandlerFunc

	// RegisterRoutes attaches the application's route groups to the router.
	RegisterRoutes func(router *gin.Engine)
}

// Server is the admin API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer builds the Gin router with the base middleware chain (request id,
// recovery, logging, optional CORS and metrics), the health endpoints, and
// the application routes.
func NewServer(opts Options, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if opts.MetricsMiddleware != nil {
		router.Use(opts.MetricsMiddleware)
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler)

	if opts.RegisterRoutes != nil {
		opts.RegisterRoutes(router)
	}

	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
