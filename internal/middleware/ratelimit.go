package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DukeRupert/clientdesk/internal/auth"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter keeps one token bucket per key. A bucket holds burst tokens
// and refills at burst per window.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time
}

// NewRateLimiter creates a limiter allowing maxAttempts per window.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RateLimiter{
		limit:       rate.Limit(float64(maxAttempts) / window.Seconds()),
		burst:       maxAttempts,
		limiters:    make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.maybeCleanup()

	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Allow reports whether a request from key may proceed and consumes a
// token if so.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// Reset clears the bucket for key (e.g., after a successful login).
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, key)
}

// RetryAfter returns how long key must wait for the next token. It does
// not consume a token.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	missing := 1 - rl.get(key).Tokens()
	if missing <= 0 || rl.limit <= 0 {
		return 0
	}
	return time.Duration(missing / float64(rl.limit) * float64(time.Second))
}

// maybeCleanup drops idle buckets. Called with mu held.
func (rl *RateLimiter) maybeCleanup() {
	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	for key, l := range rl.limiters {
		if l.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns middleware that rate limits requests per client IP.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := auth.ClientIP(r)

		if m.limiter.Allow(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		m.logger.Warn("rate limit exceeded",
			"ip", clientIP,
			"path", r.URL.Path,
			"method", r.Method,
		)

		retryAfter := max(int(m.limiter.RetryAfter(clientIP).Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

		const message = "Muitas tentativas. Aguarde um momento e tente novamente."
		switch {
		case isAPIRequest(r):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limit_exceeded",
				"message": message,
			})
		case auth.IsHTMX(r):
			// htmx does not swap 4xx bodies by default; retarget the banner.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("HX-Retarget", "#form-error")
			w.Header().Set("HX-Reswap", "innerHTML")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`<p class="text-sm text-red-600">` + message + `</p>`))
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`<!DOCTYPE html>
<html lang="pt-BR">
<head><title>Muitas tentativas</title></head>
<body>
<h1>Muitas tentativas</h1>
<p>` + message + `</p>
</body>
</html>`))
		}
	})
}

// =============================================================================
// Auth Rate Limiter (combined limiter for auth endpoints)
// =============================================================================

// AuthRateLimiter provides rate limiting for the login and registration
// endpoints.
type AuthRateLimiter struct {
	loginLimiter    *RateLimiter
	registerLimiter *RateLimiter
	logger          *slog.Logger
}

// NewAuthRateLimiter creates rate limiters for auth endpoints.
// - Login: loginAttempts per 15 minutes (5 when non-positive)
// - Register: 3 attempts per hour
func NewAuthRateLimiter(loginAttempts int, logger *slog.Logger) *AuthRateLimiter {
	if loginAttempts <= 0 {
		loginAttempts = 5
	}
	return &AuthRateLimiter{
		loginLimiter:    NewRateLimiter(loginAttempts, 15*time.Minute),
		registerLimiter: NewRateLimiter(3, time.Hour),
		logger:          logger,
	}
}

// LimitLogin returns middleware for rate limiting login attempts.
func (a *AuthRateLimiter) LimitLogin(next http.Handler) http.Handler {
	return NewRateLimitMiddleware(a.loginLimiter, a.logger).Limit(next)
}

// LimitRegister returns middleware for rate limiting registration attempts.
func (a *AuthRateLimiter) LimitRegister(next http.Handler) http.Handler {
	return NewRateLimitMiddleware(a.registerLimiter, a.logger).Limit(next)
}

// ResetLogin clears the login limit for the request's client after a
// successful sign-in.
func (a *AuthRateLimiter) ResetLogin(r *http.Request) {
	a.loginLimiter.Reset(auth.ClientIP(r))
}
