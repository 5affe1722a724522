// Package middleware provides HTTP middlewares for authentication, request
// ids, rate limiting and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/models"
)

type ctxKey string

const (
	tokenKey    ctxKey = "token"
	identityKey ctxKey = "identity"
)

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

// TokenReader reads the bearer token out of a request's session.
type TokenReader interface {
	GetToken(r *http.Request) (string, bool)
}

// RequireToken is a middleware that only lets requests with a stored bearer
// token through. Others are redirected to LoginPath.
//
// The token, and the identity decoded from it when possible, are stored in
// the request context for downstream handlers.
func RequireToken(tokens TokenReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokens.GetToken(r)
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			if id, ok := auth.ExtractIdentity(token); ok {
				ctx = context.WithValue(ctx, identityKey, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTokenFromContext returns the bearer token stored by RequireToken,
// or an empty string if not found.
func GetTokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}

// GetIdentityFromContext returns the identity decoded from the bearer token.
func GetIdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
