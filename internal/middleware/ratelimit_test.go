package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateLimit_PerIP(t *testing.T) {
	cfg := RateLimitConfig{Requests: 2, Window: time.Minute, Burst: 2}
	h := RateLimit(cfg, zap.NewNop())(&dummyHandler{})

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)

	rec := send("10.0.0.1:3333")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code, "other clients keep their own bucket")
}

func TestRateLimit_IgnoresForwardedHeaders(t *testing.T) {
	cfg := RateLimitConfig{Requests: 1, Window: time.Hour, Burst: 1}
	h := RateLimit(cfg, zap.NewNop())(&dummyHandler{})

	var allowed int
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "192.0.2."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed, "rotating forwarding headers must not reset the bucket")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "remote addr", remote: "192.0.2.1:5000", want: "192.0.2.1"},
		{name: "remote without port", remote: "192.0.2.1", want: "192.0.2.1"},
		{name: "forwarded for ignored", header: map[string]string{"X-Forwarded-For": "203.0.113.9"}, remote: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "real ip ignored", header: map[string]string{"X-Real-IP": "198.51.100.4"}, remote: "10.0.0.1:1", want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestIPLimiter_EvictsIdle(t *testing.T) {
	now := time.Unix(0, 0)
	l := &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    1,
		burst:    1,
		now:      func() time.Time { return now },
		lastGC:   now,
	}

	l.get("a")
	now = now.Add(idleAfter + time.Second)
	l.get("b")

	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}
