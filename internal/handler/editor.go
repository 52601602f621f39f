// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
)

// EditorHandler handles the editorial review routes.
type EditorHandler struct {
	renderer   *render.Renderer
	approval   *service.ApprovalService
	articles   *service.ArticleService
	publishers *service.PublisherService
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(renderer *render.Renderer, approval *service.ApprovalService, articles *service.ArticleService, publishers *service.PublisherService) *EditorHandler {
	return &EditorHandler{
		renderer:   renderer,
		approval:   approval,
		articles:   articles,
		publishers: publishers,
	}
}

type reviewView struct {
	Articles []model.Article
}

// Review lists the articles awaiting approval, oldest first.
func (h *EditorHandler) Review(w http.ResponseWriter, r *http.Request) {
	articles, err := h.approval.ReviewQueue(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load review queue")
		return
	}
	renderPage(w, r, h.renderer, "review", "Review", reviewView{Articles: articles})
}

// Approve approves an article and returns to the review queue. Approving an
// already approved article is not an error.
func (h *EditorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	result, err := h.approval.Approve(r.Context(), id, middleware.GetIdentity(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to approve article")
		return
	}

	if result == service.ResultAlreadyApproved {
		h.renderer.SetFlash(r, "Article was already approved.", "info")
	} else {
		h.renderer.SetFlash(r, "Article approved.", "success")
	}
	http.Redirect(w, r, redirectEditorReview, http.StatusFound)
}

// DeleteArticle deletes any article.
func (h *EditorHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), middleware.GetIdentity(r), id); err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to delete article")
		return
	}
	flashSuccess(w, r, h.renderer, redirectEditorReview, "Article deleted.")
}

// CreatePublisher adds a publisher from the publishers page form.
func (h *EditorHandler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectPublishers, "Invalid form data")
		return
	}

	p, err := h.publishers.Create(r.Context(), middleware.GetIdentity(r), r.FormValue("name"), r.FormValue("description"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			flashError(w, r, h.renderer, redirectPublishers, verr.Fields["name"])
			return
		}
		handleServiceError(w, r, h.renderer, err, "failed to create publisher")
		return
	}
	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectPublisherF, p.Slug), "Publisher created.")
}
