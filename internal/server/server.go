// Package server is the backend-for-frontend HTTP API. It resolves the
// caller's session and proxies to the HackSpark backend through pkg/client.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackspark/hackspark/internal/metrics"
	"github.com/hackspark/hackspark/internal/session"
)

// CookieName holds the signed session token for browser callers.
const CookieName = "hackspark_session"

// Deps are the router's collaborators.
type Deps struct {
	Resolver      *session.Resolver
	Logger        *slog.Logger
	Gatherer      prometheus.Gatherer
	FrontendURL   string
	RateLimit     int // requests per minute per IP
	SecureCookies bool
}

// NewRouter builds the HTTP API.
//
//	GET  /healthz
//	GET  /metrics
//	GET  /api/users/me
//	POST /api/auth/login
//	POST /api/auth/logout
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(newLoggingMiddleware(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.health)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		if d.RateLimit > 0 {
			r.Use(httprate.LimitByIP(d.RateLimit, time.Minute))
		}
		r.Use(sessionMiddleware)

		r.Get("/users/me", h.userDetails)
		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)
	})

	return r
}

// Run serves h on addr until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
