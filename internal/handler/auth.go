// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/session"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	users           *service.UserService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(users *service.UserService, events *service.EventService, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		users:           users,
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    events,
		loginProtection: lp,
	}
}

type loginView struct {
	Next     string
	Username string
}

// loginRedirect returns the login page URL that keeps next.
func loginRedirect(next string) string {
	if next == "/" {
		return middleware.LoginPath
	}
	return middleware.LoginURL(next)
}

// LoginForm renders the login page. Authenticated users go straight to next.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"))
	if middleware.GetIdentity(r).IsAuthenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	renderPage(w, r, h.renderer, "login", "Log in", loginView{Next: next})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, middleware.LoginPath, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := middleware.SafeNext(r.FormValue("next"))
	retry := loginRedirect(next)

	if username == "" || password == "" {
		flashError(w, r, h.renderer, retry, "Username and password are required")
		return
	}

	clientIP := r.RemoteAddr
	meta := map[string]any{"username": username}

	if h.loginProtection != nil {
		if status := h.loginProtection.Status(username); status.Locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", nil, clientIP, meta)
			flashError(w, r, h.renderer, retry, fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(status.Remaining)))
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			logAndInternalError(w, "database error during login", "error", err)
			return
		}
		h.logAuth(r, model.EventLevelWarning, "Login failed: invalid credentials", nil, clientIP, meta)
		if h.loginProtection != nil {
			status := h.loginProtection.Fail(r, username)
			if status.Locked {
				flashError(w, r, h.renderer, retry, fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(status.Remaining)))
				return
			}
			if status.AttemptsLeft > 0 && status.AttemptsLeft <= 3 {
				flashError(w, r, h.renderer, retry, fmt.Sprintf("Invalid username or password. %d attempts remaining.", status.AttemptsLeft))
				return
			}
		}
		flashError(w, r, h.renderer, retry, "Invalid username or password")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Succeed(username)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	h.logAuth(r, model.EventLevelInfo, "User logged in", &user.ID, clientIP, meta)

	flashAndRedirect(w, r, h.renderer, next, "Welcome back, "+user.Username+"!", "success")
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), session.KeyUserID)
	if userID > 0 {
		h.logAuth(r, model.EventLevelInfo, "User logged out", &userID, r.RemoteAddr, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, middleware.LoginPath, "You have been logged out.", "info")
}

func (h *AuthHandler) logAuth(r *http.Request, level, message string, userID *int64, ip string, meta map[string]any) {
	if h.eventService == nil {
		return
	}
	_ = h.eventService.LogAuthEvent(r.Context(), level, message, userID, ip, meta)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
