package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"folha/internal/transport/http/api"
)

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*rateBucket
	now     func() time.Time
}

// RateLimit allows limit requests per client IP in each window. A limit of
// zero disables it.
func RateLimit(limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	rl := &rateLimiter{limit: limit, window: window, clients: map[string]*rateBucket{}, now: time.Now}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(w, r, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	if rl.limit <= 0 {
		return true
	}
	key := clientIP(r)
	now := rl.now()

	rl.mu.Lock()
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	overLimit := bucket.count > rl.limit
	retryAfter := max(int(bucket.reset.Sub(now).Seconds()), 1)
	rl.mu.Unlock()

	if overLimit {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		if logger != nil {
			logger.Warn("rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
		}
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
