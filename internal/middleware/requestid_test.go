package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_Generated(t *testing.T) {
	dummy := &dummyHandler{}
	rec := httptest.NewRecorder()
	RequestID(dummy).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(HeaderXRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, GetRequestIDFromContext(dummy.ctx))
}

func TestRequestID_Passthrough(t *testing.T) {
	dummy := &dummyHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")

	rec := httptest.NewRecorder()
	RequestID(dummy).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", GetRequestIDFromContext(dummy.ctx))
}

func TestRequestID_OversizedReplaced(t *testing.T) {
	dummy := &dummyHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", maxRequestIDLen+1))

	rec := httptest.NewRecorder()
	RequestID(dummy).ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Header().Get(HeaderXRequestID))
	assert.NoError(t, err)
}
