// Package server exposes the intake and profile pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smegrowth/profiler-cli/internal/config"
	"github.com/smegrowth/profiler-cli/internal/pipeline"
	"github.com/smegrowth/profiler-cli/internal/store"
	"github.com/smegrowth/profiler-cli/pkg/strategy"
)

// Server wires the store, the profile builder and the strategy client behind
// the HTTP API.
type Server struct {
	store        store.Store
	builder      *pipeline.Builder
	strategy     strategy.Client
	autoStrategy bool
	limiter      *rate.Limiter
}

// New creates a Server.
func New(st store.Store, builder *pipeline.Builder, stratClient strategy.Client, cfg *config.Config) *Server {
	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 20
	}
	return &Server{
		store:        st,
		builder:      builder,
		strategy:     stratClient,
		autoStrategy: cfg.Strategy.AutoGenerate,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.throttle)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/strategy/health", s.handleStrategyHealth)

		r.Route("/forms", func(r chi.Router) {
			r.Post("/submit", s.handleSubmitForm)
			r.Get("/submissions", s.handleListSubmissions)
			r.Get("/submissions/{id}", s.handleGetSubmission)
			r.Put("/submissions/{id}/status", s.handleUpdateSubmissionStatus)
			r.Delete("/submissions/{id}", s.handleDeleteSubmission)
			r.Get("/stats", s.handleSubmissionStats)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/build", s.handleBuildProfile)
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/", s.handleListProfiles)
			r.Get("/{id}", s.handleGetProfile)
			r.Delete("/{id}", s.handleDeleteProfile)
			r.Post("/{id}/strategy", s.handleGenerateStrategy)
		})
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	zap.L().Info("server: listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
