// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers, so forms carry no token.
type CSRFConfig struct {
	// AuthKey is kept for API compatibility with gorilla/csrf and is not
	// used to sign anything.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to make cross-origin
	// unsafe requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig that trusts the local dev server
// on port in development and nothing extra in production.
func DefaultCSRFConfig(authKey []byte, isDev bool, port int) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		p := strconv.Itoa(port)
		cfg.TrustedOrigins = []string{"localhost:" + p, "127.0.0.1:" + p}
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-origin unsafe requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errHandler := cfg.ErrorHandler
	if errHandler == nil {
		errHandler = http.HandlerFunc(csrfErrorHandler)
	}
	opts := []csrf.Option{csrf.ErrorHandler(errHandler)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
