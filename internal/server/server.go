package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/floatchat-ai/floatchat/internal/ratelimit"
	"github.com/floatchat-ai/floatchat/internal/search"
)

// Server is the FloatChat HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// ServerConfig holds all dependencies and configuration for creating a
// Server. Limiter and Index are optional (nil = disabled).
type ServerConfig struct {
	ChatSvc Asker
	DB      Pinger
	Index   search.Index
	Limiter ratelimit.Limiter
	Logger  *slog.Logger

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		ChatSvc:             cfg.ChatSvc,
		DB:                  cfg.DB,
		Index:               cfg.Index,
		Logger:              cfg.Logger,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	chatRL := ratelimit.Middleware(cfg.Limiter, ratelimit.IPKeyFunc)

	mux := http.NewServeMux()

	// The chat endpoint is rate limited per client IP: each request costs
	// one generation-backend call.
	mux.Handle("POST /api/chat", chatRL(http.HandlerFunc(h.HandleChat)))

	// Health (no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
