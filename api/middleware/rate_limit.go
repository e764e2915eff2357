package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kspt-johs/disir-go/api/apierrors"
)

// RateLimiter is a per-client token bucket limiter, grounded on the
// teacher's RateLimiter (internal/api/middleware/rate_limit.go).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter builds a RateLimiter allowing requestsPerMinute
// sustained, with a burst capacity.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (rl *RateLimiter) get(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[clientID]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[clientID] = l
	}
	return l
}

// Cleanup drops limiters sitting at a full bucket (i.e. unused since
// the last cleanup), bounding memory for long-running processes.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, l := range rl.limiters {
		if l.TokensAt(now) == float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// RateLimit returns middleware enforcing requestsPerMinute/burst per
// client, identified by X-Forwarded-For / X-Real-IP / RemoteAddr.
func RateLimit(requestsPerMinute, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requestsPerMinute, burst)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)

			if !limiter.get(clientID).Allow() {
				w.Header().Set(RateLimitLimitHeader, strconv.Itoa(requestsPerMinute))
				w.Header().Set(RateLimitRemainingHeader, "0")
				w.Header().Set("Retry-After", "60")
				requestID := GetRequestID(r.Context())
				apierrors.Write(w, apierrors.RateLimitError().WithRequestID(requestID))
				return
			}

			w.Header().Set(RateLimitLimitHeader, strconv.Itoa(requestsPerMinute))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
