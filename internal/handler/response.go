// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// errorView is the data of the error page.
type errorView struct {
	Status  int
	Message string
}

// renderError renders the error page, falling back to plain text.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, message string) {
	err := renderer.RenderStatus(w, r, status, "error", render.TemplateData{
		Title: http.StatusText(status),
		Data:  errorView{Status: status, Message: message},
	})
	if err != nil {
		slog.Error("failed to render error page", "error", err, "status", status)
		http.Error(w, message, status)
	}
}

// renderPage renders name and logs a 500 on failure.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name, title string, data any) {
	if err := renderer.Render(w, r, name, render.TemplateData{Title: title, Data: data}); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// handleServiceError maps service errors to web responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, middleware.LoginURL(r.URL.RequestURI()), http.StatusFound)
	case errors.Is(err, service.ErrNotFound):
		renderError(w, r, renderer, http.StatusNotFound, "The page you are looking for does not exist.")
	case errors.Is(err, service.ErrPermissionDenied):
		renderError(w, r, renderer, http.StatusForbidden, "You do not have permission to do that.")
	default:
		slog.Error(logMsg, "error", err, "path", r.URL.Path)
		renderError(w, r, renderer, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// parseIDParam parses a positive int64 route parameter. It writes a 404
// and returns false when the parameter is not a valid ID.
func parseIDParam(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		renderError(w, r, renderer, http.StatusNotFound, "The page you are looking for does not exist.")
		return 0, false
	}
	return id, true
}

// backURL returns the same-host Referer path, or fallback.
func backURL(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return fallback
	}
	return middleware.SafeNext(ref.RequestURI())
}
