// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
)

// Routes returns the API router. The identity must already be in the
// request context. rateLimit may be nil.
func (h *Handler) Routes(audit middleware.AuditLogger, rateLimit *middleware.APIRateLimit) http.Handler {
	r := chi.NewRouter()
	if rateLimit != nil {
		r.Use(rateLimit.Middleware())
	}

	r.Get("/status/", h.Status)

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIRequireOperation(auth.OpViewFeed, audit))
		r.Get("/articles/subscribed/", h.SubscribedArticles)
		r.Get("/publishers/", h.ListPublishers)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIRequireOperation(auth.OpManageSubscriptions, audit))
		r.Get("/subscriptions/", h.ListSubscriptions)
		r.Put("/subscriptions/publishers/{id}/", h.SubscribePublisher)
		r.Delete("/subscriptions/publishers/{id}/", h.UnsubscribePublisher)
		r.Put("/subscriptions/journalists/{id}/", h.SubscribeJournalist)
		r.Delete("/subscriptions/journalists/{id}/", h.UnsubscribeJournalist)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
