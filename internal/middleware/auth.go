// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyIdentity    ContextKey = "identity"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginPath is where unauthenticated web requests are sent.
const LoginPath = "/login/"

// IdentityLoader resolves a session user ID into an identity.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID int64) (auth.Identity, error)
}

// AuditLogger records security events. service.EventService implements it.
type AuditLogger interface {
	LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error
}

// LoadIdentity creates middleware that loads the current identity into the
// request context. Requests without a session continue as anonymous. A
// session pointing at a deleted user is destroyed.
func LoadIdentity(sm *scs.SessionManager, loader IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := loader.LoadIdentity(r.Context(), userID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					_ = sm.Destroy(r.Context())
				} else {
					slog.Error("failed to load identity", "error", err, "user_id", userID)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// GetIdentity retrieves the current identity from the request context.
// Returns auth.Anonymous if none is present.
func GetIdentity(r *http.Request) auth.Identity {
	identity, ok := r.Context().Value(ContextKeyIdentity).(auth.Identity)
	if !ok {
		return auth.Anonymous
	}
	return identity
}

// GetUserIDPtr returns a pointer to the current user's ID, or nil for
// anonymous requests. Useful for event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	identity := GetIdentity(r)
	if !identity.IsAuthenticated() {
		return nil
	}
	id := identity.UserID
	return &id
}

// LoginURL returns the login page URL that returns to next after login.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local absolute path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return "/"
	}
	return next
}

// RequireOperation creates middleware for web pages that enforces the
// permission gate. Anonymous users are redirected to the login page;
// authenticated users lacking the required group get 403.
func RequireOperation(op auth.Operation, audit AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			switch auth.Authorize(identity, op) {
			case auth.Allow:
				next.ServeHTTP(w, r)
			case auth.DenyUnauthenticated:
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			default:
				logAccessDenied(r, identity, op, audit)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			}
		})
	}
}

// logAccessDenied records a 403 in the application log and the event log.
func logAccessDenied(r *http.Request, identity auth.Identity, op auth.Operation, audit AuditLogger) {
	slog.Warn("access denied",
		"status", http.StatusForbidden,
		"method", r.Method,
		"path", r.URL.Path,
		"user_id", identity.UserID,
		"groups", identity.Groups(),
		"operation", string(op),
		"required_group", auth.RequiredGroup(op),
		"remote_addr", r.RemoteAddr,
	)

	if audit != nil {
		userID := identity.UserID
		_ = audit.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: insufficient permissions", &userID, getClientIP(r), map[string]any{
			"method":         r.Method,
			"path":           r.URL.Path,
			"status":         http.StatusForbidden,
			"operation":      string(op),
			"required_group": auth.RequiredGroup(op),
		})
	}
}

// RequestPath creates middleware that stores the request path in the context.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
