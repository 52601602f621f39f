// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
)

// ListPublishers handles GET /api/publishers/.
func (h *Handler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Publishers")
		return
	}
	WriteSuccess(w, publishers, &Meta{Total: int64(len(publishers))})
}

// ListSubscriptions handles GET /api/subscriptions/.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.List(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		writeServiceError(w, r, err, "Subscriptions")
		return
	}
	WriteSuccess(w, subs, nil)
}

type subscriptionAction func(ctx context.Context, actor auth.Identity, id int64) error

// changeSubscription runs action for the {id} parameter and answers with
// the caller's updated subscriptions.
func (h *Handler) changeSubscription(w http.ResponseWriter, r *http.Request, action subscriptionAction, what string) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid "+what+" ID", nil)
		return
	}

	identity := middleware.GetIdentity(r)
	if err := action(r.Context(), identity, id); err != nil {
		writeServiceError(w, r, err, what)
		return
	}

	h.ListSubscriptions(w, r)
}

// SubscribePublisher handles PUT /api/subscriptions/publishers/{id}/.
func (h *Handler) SubscribePublisher(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.subscriptions.SubscribePublisher, "Publisher")
}

// UnsubscribePublisher handles DELETE /api/subscriptions/publishers/{id}/.
func (h *Handler) UnsubscribePublisher(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.subscriptions.UnsubscribePublisher, "Publisher")
}

// SubscribeJournalist handles PUT /api/subscriptions/journalists/{id}/.
func (h *Handler) SubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.subscriptions.SubscribeJournalist, "Journalist")
}

// UnsubscribeJournalist handles DELETE /api/subscriptions/journalists/{id}/.
func (h *Handler) UnsubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.subscriptions.UnsubscribeJournalist, "Journalist")
}
