package handlers

import (
	"net/http"
	"time"

	"eventify/internal/metrics"
	"eventify/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig wires handlers and middleware into the API router
type RouterConfig struct {
	Auth           *AuthHandler
	Public         *PublicHandler
	Organizer      *OrganizerEventHandler
	CheckIn        *CheckInHandler
	Health         *HealthHandler
	RequireAuth    func(http.Handler) http.Handler
	CSRF           *middleware.CSRFProtection
	TrustedProxies *middleware.ProxyTrust
	LoginLimit     *middleware.RateLimiter
	RegisterLimit  *middleware.RateLimiter
	CORS           middleware.CORSConfig
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP API
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.ClientIPMiddleware(cfg.TrustedProxies))
	r.Use(middleware.RequestIDMiddleware(cfg.Logger))
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware(cfg.Logger))
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	if cfg.CSRF != nil {
		r.Method(http.MethodGet, "/csrf-cookie", cfg.CSRF.TokenHandler())
	}
	r.With(limit(cfg.RegisterLimit)).Post("/register", cfg.Auth.Register)
	r.With(limit(cfg.LoginLimit)).Post("/login", cfg.Auth.Login)

	// Public catalog and participant registration
	r.Get("/events", cfg.Public.ListEvents)
	r.Get("/events/{id}", cfg.Public.GetEvent)
	r.With(limit(cfg.RegisterLimit)).Post("/events/{id}/register", cfg.Public.Register)

	// Organizer routes
	r.Group(func(r chi.Router) {
		r.Use(cfg.RequireAuth)
		if cfg.CSRF != nil {
			r.Use(cfg.CSRF.CookieSessions)
		}

		r.Post("/logout", cfg.Auth.Logout)
		r.Get("/user", cfg.Auth.Me)

		r.Route("/organisateur/events", func(r chi.Router) {
			r.Get("/", cfg.Organizer.List)
			r.Post("/", cfg.Organizer.Create)
			r.Get("/{id}", cfg.Organizer.Show)
			r.Put("/{id}", cfg.Organizer.Update)
			r.Patch("/{id}", cfg.Organizer.Update)
			r.Delete("/{id}", cfg.Organizer.Delete)
			r.Get("/{id}/registrations", cfg.Organizer.Registrations)
		})

		r.Get("/events/{id}/check-in/{participant}", cfg.CheckIn.Show)
		r.Post("/events/{id}/check-in/{participant}", cfg.CheckIn.CheckIn)
	})

	return r
}

func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(rl)
}
