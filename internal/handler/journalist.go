// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/store"
)

// JournalistHandler handles article authoring routes.
type JournalistHandler struct {
	renderer   *render.Renderer
	articles   *service.ArticleService
	publishers *service.PublisherService
}

// NewJournalistHandler creates a new JournalistHandler.
func NewJournalistHandler(renderer *render.Renderer, articles *service.ArticleService, publishers *service.PublisherService) *JournalistHandler {
	return &JournalistHandler{
		renderer:   renderer,
		articles:   articles,
		publishers: publishers,
	}
}

// articleFormView is the data of the article editor.
type articleFormView struct {
	ArticleID  int64
	Action     string
	Input      service.ArticleInput
	Errors     map[string]string
	Publishers []store.Publisher
}

// parseArticleForm reads the article editor form. An unparsable publisher
// becomes -1 so validation reports it.
func parseArticleForm(r *http.Request) service.ArticleInput {
	in := service.ArticleInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if raw := strings.TrimSpace(r.FormValue("publisher_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			id = -1
		}
		in.PublisherID = id
	}
	return in
}

// List renders the journalist's own articles.
func (h *JournalistHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListOwn(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list own articles")
		return
	}
	renderPage(w, r, h.renderer, "my_articles", "My articles", articles)
}

// NewForm renders an empty article editor.
func (h *JournalistHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, articleFormView{Action: RouteJournalistArticles})
}

// Create stores a submitted article.
func (h *JournalistHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteJournalistArticleNew, "Invalid form data")
		return
	}

	in := parseArticleForm(r)
	article, err := h.articles.Create(r.Context(), middleware.GetIdentity(r), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, articleFormView{
				Action: RouteJournalistArticles,
				Input:  in,
				Errors: verr.Fields,
			})
			return
		}
		handleServiceError(w, r, h.renderer, err, "failed to create article")
		return
	}

	flashSuccess(w, r, h.renderer, redirectJournalistArticles, fmt.Sprintf("Article %q submitted for review.", article.Title))
}

// EditForm renders the editor for an existing article.
func (h *JournalistHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	article, err := h.articles.GetForEdit(r.Context(), middleware.GetIdentity(r), id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load article for editing")
		return
	}

	h.renderForm(w, r, http.StatusOK, articleFormView{
		ArticleID: article.ID,
		Action:    fmt.Sprintf(actionJournalistArticleF, article.ID),
		Input: service.ArticleInput{
			Title:       article.Title,
			Content:     article.Content,
			PublisherID: article.PublisherID.Int64,
		},
	})
}

// Update saves changes to an existing article.
func (h *JournalistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}
	action := fmt.Sprintf(actionJournalistArticleF, id)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, fmt.Sprintf(redirectJournalistArticleEditF, id), "Invalid form data")
		return
	}

	in := parseArticleForm(r)
	if _, err := h.articles.Update(r.Context(), middleware.GetIdentity(r), id, in); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, articleFormView{
				ArticleID: id,
				Action:    action,
				Input:     in,
				Errors:    verr.Fields,
			})
			return
		}
		handleServiceError(w, r, h.renderer, err, "failed to update article")
		return
	}

	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectArticleF, id), "Article updated.")
}

// Delete withdraws one of the journalist's own articles that is still
// waiting for review.
func (h *JournalistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), middleware.GetIdentity(r), id); err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to withdraw article")
		return
	}
	flashSuccess(w, r, h.renderer, redirectJournalistArticles, "Article withdrawn.")
}

func (h *JournalistHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view articleFormView) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list publishers")
		return
	}
	view.Publishers = publishers
	if view.Errors == nil {
		view.Errors = map[string]string{}
	}

	title := "New article"
	if view.ArticleID != 0 {
		title = "Edit article"
	}
	if err := h.renderer.RenderStatus(w, r, status, "article_form", render.TemplateData{Title: title, Data: view}); err != nil {
		logAndInternalError(w, "failed to render template", "template", "article_form", "error", err)
	}
}
