package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/manager"
	"mercator-hq/gatekeep/pkg/rules/validator"
	"mercator-hq/gatekeep/pkg/telemetry"
	"mercator-hq/gatekeep/pkg/telemetry/health"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

// Deps are the components the server routes to. Evaluator, Manager and
// Telemetry are required.
type Deps struct {
	Evaluator *engine.Evaluator
	Manager   *manager.Manager

	// Validator lints inline configurations. When nil, inline rules are
	// only decoded.
	Validator *validator.Validator

	Telemetry *telemetry.Telemetry
}

// Server is the HTTP front end of the rules engine.
type Server struct {
	config    *config.ServerConfig
	telemetry *config.TelemetryConfig
	deps      Deps

	handler    http.Handler
	httpServer *http.Server
	addr       net.Addr

	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Routes are built once and shared by Handler and
// Start.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if deps.Evaluator == nil {
		return nil, errors.New("evaluator cannot be nil")
	}
	if deps.Manager == nil {
		return nil, errors.New("manager cannot be nil")
	}
	if deps.Telemetry == nil {
		return nil, errors.New("telemetry cannot be nil")
	}

	s := &Server{
		config:       &cfg.Server,
		telemetry:    &cfg.Telemetry,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}

	deps.Telemetry.Health().RegisterCheck("rules", deps.Manager.HealthCheck)
	s.handler = s.setupRoutes()
	return s, nil
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on ServerConfig.ListenAddress and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	logger := s.deps.Telemetry.Logger()
	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		s.markStopped()
		return err
	case <-s.shutdownChan:
		logger.Info("shutdown requested")
	}
	return s.Shutdown(context.Background())
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully drains in-flight requests within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		logger := s.deps.Telemetry.Logger()
		logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		logger.Info("http server stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// IsRunning reports whether Start is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// setupRoutes configures the router and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	tel := s.deps.Telemetry
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(recoveryMiddleware(tel.Logger()))
	r.Use(tracing.HTTPMiddleware(tel.Tracer()))
	r.Use(accessMiddleware(tel.Logger(), tel.Metrics()))
	if s.config.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(s.config.MaxBodyBytes))
	}
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/explain", s.handleExplain)
		r.Get("/patterns", s.handlePatterns)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.handleRules)
			r.Post("/reload", s.handleReload)
			r.Get("/versions", s.handleVersions)
			r.Post("/versions/{id}/activate", s.handleActivate)
		})
	})

	checker := tel.Health()
	build := tel.Build()
	r.Get(pathOr(s.telemetry.Health.LivenessPath, config.DefaultLivenessPath), checker.LivenessHandler())
	r.Get(pathOr(s.telemetry.Health.ReadinessPath, config.DefaultReadinessPath), checker.ReadinessHandler())
	r.Get("/version", health.VersionHandler(build.Version, build.Commit, build.BuildTime))
	if tel.Metrics().Enabled() {
		r.Handle(pathOr(s.telemetry.Metrics.Path, config.DefaultMetricsPath), tel.Metrics().Handler())
	}

	return r
}

func pathOr(path, def string) string {
	if path == "" {
		return def
	}
	return path
}
