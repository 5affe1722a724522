package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per Window.
	Requests int
	// Window is the refill period.
	Window time.Duration
	// Burst allows temporary bursts above the rate.
	Burst int
}

// AuthLimit guards the login and register forms.
var AuthLimit = RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 10}

// idleAfter is how long an unused limiter is kept.
const idleAfter = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	lastGC   time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > idleAfter {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > idleAfter {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are not
// read here: behind a trusted proxy, chi's RealIP middleware rewrites
// RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits requests per client IP with a token bucket. Rejected
// requests get 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	l := &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:    cfg.Burst,
		now:      time.Now,
	}
	l.lastGC = l.now()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			limiter := l.get(key)

			if !limiter.Allow() {
				res := limiter.Reserve()
				delay := res.Delay()
				res.Cancel()

				retryAfter := max(int(delay.Round(time.Second).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				logger.Warn("rate limit exceeded",
					zap.String("key", key),
					zap.String("path", r.URL.Path),
					zap.Int("retry_after", retryAfter),
				)
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
