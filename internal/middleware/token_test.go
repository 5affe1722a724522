package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type fakeTokens struct {
	token string
}

func (f fakeTokens) GetToken(*http.Request) (string, bool) {
	return f.token, f.token != ""
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestRequireToken_NoToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := RequireToken(fakeTokens{})(dummy)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, dummy.called, "next handler must not run without a token")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireToken_WithIdentity(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		auth.ClaimNameIdentifier: "42",
		auth.ClaimName:           "alice",
	})

	dummy := &dummyHandler{}
	h := RequireToken(fakeTokens{token: token})(dummy)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, dummy.called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, GetTokenFromContext(dummy.ctx))

	id, ok := GetIdentityFromContext(dummy.ctx)
	require.True(t, ok)
	assert.Equal(t, models.Identity{ID: "42", Username: "alice"}, id)
}

func TestRequireToken_OpaqueToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := RequireToken(fakeTokens{token: "opaque"})(dummy)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, dummy.called, "an undecodable token is still a token")
	assert.Equal(t, "opaque", GetTokenFromContext(dummy.ctx))
	_, ok := GetIdentityFromContext(dummy.ctx)
	assert.False(t, ok)
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTokenFromContext(ctx))
	_, ok := GetIdentityFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, GetRequestIDFromContext(ctx))
}
