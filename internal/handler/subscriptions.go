// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
)

// SubscriptionHandler manages the reader's subscriptions.
type SubscriptionHandler struct {
	renderer      *render.Renderer
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(renderer *render.Renderer, subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{renderer: renderer, subscriptions: subscriptions}
}

// List renders the user's subscriptions.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.List(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list subscriptions")
		return
	}
	renderPage(w, r, h.renderer, "subscriptions", "Subscriptions", subs)
}

type subscriptionAction func(ctx context.Context, actor auth.Identity, id int64) error

// act runs a subscription change and returns to the referring page.
func (h *SubscriptionHandler) act(w http.ResponseWriter, r *http.Request, action subscriptionAction, success string) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	back := backURL(r, redirectSubscriptions)
	if err := action(r.Context(), middleware.GetIdentity(r), id); err != nil {
		if errors.Is(err, service.ErrSelfSubscription) {
			flashError(w, r, h.renderer, back, "You cannot follow yourself.")
			return
		}
		handleServiceError(w, r, h.renderer, err, "failed to change subscription")
		return
	}
	flashSuccess(w, r, h.renderer, back, success)
}

// SubscribePublisher subscribes to a publisher.
func (h *SubscriptionHandler) SubscribePublisher(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.subscriptions.SubscribePublisher, "Subscribed.")
}

// UnsubscribePublisher unsubscribes from a publisher.
func (h *SubscriptionHandler) UnsubscribePublisher(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.subscriptions.UnsubscribePublisher, "Unsubscribed.")
}

// SubscribeJournalist follows a journalist.
func (h *SubscriptionHandler) SubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.subscriptions.SubscribeJournalist, "You are now following this journalist.")
}

// UnsubscribeJournalist stops following a journalist.
func (h *SubscriptionHandler) UnsubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.subscriptions.UnsubscribeJournalist, "Unfollowed.")
}
