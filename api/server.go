// Package api provides the HTTP REST API that chat front-ends talk to.
//
// Endpoints:
//
//	POST /api/chat               - run one conversation turn
//	POST /api/reset              - clear a session's history and tool preferences
//	GET  /api/tools              - list standard tools with enablement
//	POST /api/tools              - update a session's tool preferences
//	GET  /api/computer-use-tools - list privileged tools
//	GET  /api/llm-settings       - read a session's sampling settings
//	POST /api/llm-settings       - update a session's sampling settings
//	GET  /api/health             - liveness plus model identity
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request IDs, logging)
//   - chat.go: chat and reset endpoints
//   - tools.go: tool listing and preference endpoints
//   - settings.go: sampling-settings endpoints
//   - health.go: health endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/skiff-ai/skiff/internal/agent"
	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/tools"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads; this prevents Slowloris-style
	// connection exhaustion.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because a chat turn can spend minutes in
	// model calls and tool dispatch before the response is written.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout is the keep-alive idle bound.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the chat API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	chat     *ChatHandler
	tools    *ToolsHandler
	settings *SettingsHandler
	health   *HealthHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(ag *agent.Agent, store *session.Store, standard, privileged *tools.Registry, model string, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		chat:     NewChatHandler(ag, store, logger),
		tools:    NewToolsHandler(store, standard, privileged, logger),
		settings: NewSettingsHandler(store, logger),
		health:   NewHealthHandler(model),
	}

	s.chat.RegisterRoutes(mux)
	s.tools.RegisterRoutes(mux)
	s.settings.RegisterRoutes(mux)
	s.health.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
