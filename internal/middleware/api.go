// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/newsdesk/internal/auth"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// APIRequireOperation creates middleware for API routes that enforces the
// permission gate. Both anonymous and under-privileged callers get a 403
// JSON error; the API never redirects.
func APIRequireOperation(op auth.Operation, audit AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			switch auth.Authorize(identity, op) {
			case auth.Allow:
				next.ServeHTTP(w, r)
			case auth.DenyUnauthenticated:
				WriteAPIError(w, http.StatusForbidden, "not_authenticated", "Authentication credentials were not provided.", nil)
			default:
				logAccessDenied(r, identity, op, audit)
				WriteAPIError(w, http.StatusForbidden, "permission_denied", "You do not have permission to perform this action.", nil)
			}
		})
	}
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// APIRateLimit limits API requests per authenticated user, falling back to
// the client IP for anonymous callers.
type APIRateLimit struct {
	users *limiterCache[int64]
	ips   *limiterCache[string]
}

// NewAPIRateLimit creates a limiter allowing rps requests per second with
// the given burst.
func NewAPIRateLimit(rps float64, burst int) *APIRateLimit {
	return &APIRateLimit{
		users: newLimiterCache[int64](rps, burst),
		ips:   newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the rate limiting middleware (JSON errors).
func (rl *APIRateLimit) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var allowed bool
			if identity := GetIdentity(r); identity.IsAuthenticated() {
				allowed = rl.users.get(identity.UserID).Allow()
			} else {
				allowed = rl.ips.get(getClientIP(r)).Allow()
			}
			if !allowed {
				slog.Warn("api rate limit exceeded", "ip", getClientIP(r), "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Prune drops all limiters once either cache grows beyond maxSize.
func (rl *APIRateLimit) Prune(maxSize int) {
	rl.users.clearIfExceeds(maxSize)
	rl.ips.clearIfExceeds(maxSize)
}
