// Package web serves the JSON API used by browser front ends: questions,
// per-session history, example questions, the operation catalog, health and
// Prometheus metrics.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhobs/kubeqa/pkg/agent"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	maxRequestBytes        = 64 << 10
)

// Prober checks cluster reachability for the health endpoint.
type Prober interface {
	Ping(ctx context.Context) error
}

// Options configure the web API.
type Options struct {
	Manager *agent.Manager
	Prober  Prober
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(opts Options) (http.Handler, error) {
	if opts.Manager == nil {
		return nil, errors.New("web: session manager must not be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handlers{
		manager: opts.Manager,
		prober:  opts.Prober,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(opts.Logger))
	r.Use(telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", sessionHeader},
		ExposedHeaders:   []string{sessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", h.query)
		r.Get("/history", h.history)
		r.Get("/examples", h.examples)
		r.Get("/operations", h.operations)
		r.Get("/health", h.health)
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return r, nil
}

// Serve runs the API on listenAddr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, handler http.Handler, listenAddr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "listen_addr", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		logger.Error("HTTP server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	logger.Info("HTTP server shutdown complete")
	return nil
}
