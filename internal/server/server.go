// Package server exposes the pipeline over HTTP.
//
// Every POST endpoint takes a problem document as the request body: a JSON
// graph document, or an HCL problem definition when the Content-Type is
// application/hcl. Formulation overrides are passed as query parameters.
//
//	GET  /healthz
//	GET  /metrics
//	POST /v1/roles
//	POST /v1/synthesize
//	POST /v1/schedule
//	POST /v1/validate
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

const (
	// DefaultMaxBodyBytes limits request documents.
	DefaultMaxBodyBytes int64 = 8 << 20

	shutdownTimeout = 10 * time.Second
)

// Server serves the pipeline API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	maxBody  int64
	cycles   int
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithCycleLimit sets the cycle limit used when a request does not pass
// cycle_limit.
func WithCycleLimit(n int) Option {
	return func(s *Server) { s.cycles = n }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		gatherer: prometheus.DefaultGatherer,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(s.securityHeadersMiddleware)
	router.Use(s.logMiddleware)

	router.Get("/healthz", s.instrument("/healthz", s.handleHealthz))
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	router.Route("/v1", func(r chi.Router) {
		r.Post("/roles", s.instrument("/v1/roles", s.handleRoles))
		r.Post("/synthesize", s.instrument("/v1/synthesize", s.handleSynthesize))
		r.Post("/schedule", s.instrument("/v1/schedule", s.handleSchedule))
		r.Post("/validate", s.instrument("/v1/validate", s.handleValidate))
	})
	return router
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
