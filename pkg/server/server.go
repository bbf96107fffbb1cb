// Package server wires the gateway's HTTP surface: the OpenAI-compatible
// wire endpoints, the admin endpoints over provider.Registry/health.Tracker
// /jobmanager.Manager, and a Prometheus /metrics endpoint, behind the
// ambient middleware chain and a single static bearer-token check.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hearthline/cligate/pkg/config"
	"github.com/hearthline/cligate/pkg/health"
	"github.com/hearthline/cligate/pkg/jobmanager"
	"github.com/hearthline/cligate/pkg/provider"
	"github.com/hearthline/cligate/pkg/server/middleware"
	"github.com/hearthline/cligate/pkg/telemetry/metrics"
	"github.com/hearthline/cligate/pkg/wireadapter"

	probes "github.com/hearthline/cligate/pkg/telemetry/health"
)

// Server is the gateway's HTTP listener: the OpenAI wire endpoints, the
// admin surface, and /metrics, composed over a single registry generation.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Deps bundles the components Server routes requests to. Dispatcher and
// Registry come from the same provider.Registry generation; Metrics may be
// nil (the /metrics route is then omitted).
type Deps struct {
	Registry   *provider.Registry
	Dispatcher *provider.Dispatcher
	Tracker    *health.Tracker
	Jobs       *jobmanager.Manager
	Metrics    *metrics.Collector
}

// NewServer builds a Server bound to cfg and deps. The returned Server has
// not started listening; call ListenAndServe.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{cfg: cfg}
	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.routes(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes(deps Deps) http.Handler {
	mux := http.NewServeMux()

	wireHandler := wireadapter.NewHandler(deps.Dispatcher, deps.Registry, middleware.GetRequestID)
	mux.HandleFunc("POST /v1/chat/completions", wireHandler.ChatCompletions)
	mux.HandleFunc("GET /v1/models", wireHandler.Models)

	admin := &adminAPI{registry: deps.Registry, tracker: deps.Tracker, jobs: deps.Jobs}
	mux.HandleFunc("GET /admin/providers", admin.listProviders)
	mux.HandleFunc("GET /admin/providers/{id}/status", admin.providerStatus)
	mux.HandleFunc("GET /admin/providers/{id}/ratelimit", admin.providerRateLimit)
	mux.HandleFunc("POST /admin/providers/{id}/login", admin.providerLogin)
	mux.HandleFunc("GET /admin/jobs", admin.listJobs)
	mux.HandleFunc("GET /admin/jobs/{id}", admin.getJob)
	mux.HandleFunc("GET /admin/health", admin.healthSnapshot)
	mux.HandleFunc("GET /admin/health/{model}", admin.healthSnapshotModel)

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	var protected http.Handler = mux
	protected = authMiddleware(s.cfg.AdminAPIKey)(protected)

	checker := probes.New(0)
	checker.RegisterCheck("providers", func(ctx context.Context) error {
		if len(deps.Registry.ListProviders()) == 0 {
			return fmt.Errorf("no providers configured")
		}
		return nil
	})

	outer := http.NewServeMux()
	outer.HandleFunc("GET /healthz", checker.LivenessHandler())
	outer.HandleFunc("GET /readyz", checker.ReadinessHandler())
	outer.Handle("/", protected)

	var handler http.Handler = outer
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig())(handler)
	if s.cfg.WriteTimeout > 0 {
		handler = middleware.TimeoutMiddleware(s.cfg.WriteTimeout)(handler)
	}
	return handler
}

// ListenAndServe starts the server and blocks until it stops with an
// error other than http.ErrServerClosed, or the listener is shut down.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	slog.Info("starting cligate server", "address", s.cfg.ListenAddress)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, bounded by cfg.ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		slog.Info("cligate server stopped")
	})
	return shutdownErr
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the server's fully-wrapped HTTP handler, for use in
// tests via httptest.NewServer without a real listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
