package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/middleware"
)

// formContentTypes are the encodings accepted on POST routes.
var formContentTypes = []string{"application/x-www-form-urlencoded", "multipart/form-data"}

// NewRouter constructs the front-end handler.
//
// Routes:
//
//	GET  /healthz   → Healthz
//	GET  /login     → authHandler.LoginPage
//	POST /login     → authHandler.Login        (rate limited)
//	GET  /register  → authHandler.RegisterPage
//	POST /register  → authHandler.Register     (rate limited)
//	POST /logout    → authHandler.Logout
//	GET  /          → homeHandler.List         (requires token)
//	POST /          → homeHandler.Submit       (requires token)
//
// Middleware chain (applied in order):
//  0. RealIP                     : only when trustProxy; takes the client
//     address from X-Forwarded-For / X-Real-IP set by the proxy in front
//  1. RequestID                  : X-Request-Id in and out
//  2. WithRequestLogging(logger) : one log line per request
//  3. Recoverer                  : turns panics into 500s
func NewRouter(
	store *auth.Store,
	authHandler *AuthHandler,
	homeHandler *HomeHandler,
	limit middleware.RateLimitConfig,
	trustProxy bool,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	if trustProxy {
		r.Use(chiMiddleware.RealIP)
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", Healthz)

	r.Get("/login", authHandler.LoginPage)
	r.Get("/register", authHandler.RegisterPage)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType(formContentTypes...))

		r.With(middleware.RateLimit(limit, logger)).Post("/login", authHandler.Login)
		r.With(middleware.RateLimit(limit, logger)).Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)

		// Protected: requires a stored bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(store))
			r.Post("/", homeHandler.Submit)
		})
	})

	r.With(middleware.RequireToken(store)).Get("/", homeHandler.List)

	return r
}
