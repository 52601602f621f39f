// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/newsdesk/internal/middleware"
)

// SubscribedArticles handles GET /api/articles/subscribed/.
// The body is a bare JSON array, empty when nothing matches.
func (h *Handler) SubscribedArticles(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	articles, err := h.feed.SubscribedFeed(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Articles")
		return
	}

	WriteJSON(w, http.StatusOK, articles)
}
