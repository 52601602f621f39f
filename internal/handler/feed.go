// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/store"
)

// ReaderHandler serves the public reading pages and the personal feed.
type ReaderHandler struct {
	renderer      *render.Renderer
	articles      *service.ArticleService
	feed          *service.FeedService
	publishers    *service.PublisherService
	subscriptions *service.SubscriptionService
	users         *service.UserService
}

// NewReaderHandler creates a new ReaderHandler.
func NewReaderHandler(renderer *render.Renderer, articles *service.ArticleService, feed *service.FeedService, publishers *service.PublisherService, subscriptions *service.SubscriptionService, users *service.UserService) *ReaderHandler {
	return &ReaderHandler{
		renderer:      renderer,
		articles:      articles,
		feed:          feed,
		publishers:    publishers,
		subscriptions: subscriptions,
		users:         users,
	}
}

type feedView struct {
	Personal bool
	Articles []model.Article
}

type articleView struct {
	Article     model.Article
	CanEdit     bool
	CanWithdraw bool
	CanApprove  bool
	CanDelete   bool
}

type publishersView struct {
	Publishers []store.Publisher
	Subscribed []int64
}

type publisherView struct {
	Publisher  store.Publisher
	Articles   []model.Article
	Subscribed bool
}

type journalistView struct {
	Journalist store.User
	Articles   []model.Article
	Subscribed bool
	IsSelf     bool
}

// Home renders the subscribed feed for logged-in users and the latest
// approved articles for everyone else.
func (h *ReaderHandler) Home(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	if identity.IsAuthenticated() {
		articles, err := h.feed.SubscribedFeed(r.Context(), identity.UserID)
		if err != nil {
			handleServiceError(w, r, h.renderer, err, "failed to load feed")
			return
		}
		renderPage(w, r, h.renderer, "feed", "Your feed", feedView{Personal: true, Articles: articles})
		return
	}

	articles, err := h.feed.Latest(r.Context(), service.DefaultLatestLimit)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load latest articles")
		return
	}
	renderPage(w, r, h.renderer, "feed", "Latest articles", feedView{Articles: articles})
}

// Article renders a single article.
func (h *ReaderHandler) Article(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(r)
	article, err := h.articles.Get(r.Context(), identity, id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load article")
		return
	}

	own := article.Author.ID == identity.UserID
	renderPage(w, r, h.renderer, "article", article.Title, articleView{
		Article:    article,
		CanEdit:     identity.IsEditor() || (identity.IsJournalist() && own),
		CanWithdraw: identity.IsJournalist() && own && !article.IsApproved,
		CanApprove:  identity.IsEditor() && !article.IsApproved,
		CanDelete:   auth.Authorize(identity, auth.OpDeleteArticle) == auth.Allow,
	})
}

// Publishers lists all publishers.
func (h *ReaderHandler) Publishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list publishers")
		return
	}

	view := publishersView{Publishers: publishers}
	if identity := middleware.GetIdentity(r); identity.IsAuthenticated() {
		subs, err := h.subscriptions.List(r.Context(), identity)
		if err != nil {
			handleServiceError(w, r, h.renderer, err, "failed to list subscriptions")
			return
		}
		for _, p := range subs.Publishers {
			view.Subscribed = append(view.Subscribed, p.ID)
		}
	}

	renderPage(w, r, h.renderer, "publishers", "Publishers", view)
}

// Publisher renders a publisher page with its approved articles.
func (h *ReaderHandler) Publisher(w http.ResponseWriter, r *http.Request) {
	publisher, err := h.publishers.GetBySlug(r.Context(), chi.URLParam(r, routeParamSlug))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load publisher")
		return
	}

	articles, err := h.feed.ByPublisher(r.Context(), publisher.ID)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list publisher articles")
		return
	}

	view := publisherView{Publisher: publisher, Articles: articles}
	if identity := middleware.GetIdentity(r); identity.IsAuthenticated() {
		subs, err := h.subscriptions.List(r.Context(), identity)
		if err != nil {
			handleServiceError(w, r, h.renderer, err, "failed to list subscriptions")
			return
		}
		for _, p := range subs.Publishers {
			if p.ID == publisher.ID {
				view.Subscribed = true
				break
			}
		}
	}

	renderPage(w, r, h.renderer, "publisher", publisher.Name, view)
}

// Journalist renders a journalist profile with their approved articles.
func (h *ReaderHandler) Journalist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer, routeParamID)
	if !ok {
		return
	}

	journalist, err := h.users.GetJournalist(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to load journalist")
		return
	}

	articles, err := h.feed.ByJournalist(r.Context(), journalist.ID)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, "failed to list journalist articles")
		return
	}

	identity := middleware.GetIdentity(r)
	view := journalistView{
		Journalist: journalist,
		Articles:   articles,
		IsSelf:     identity.UserID == journalist.ID,
	}
	if identity.IsAuthenticated() {
		subs, err := h.subscriptions.List(r.Context(), identity)
		if err != nil {
			handleServiceError(w, r, h.renderer, err, "failed to list subscriptions")
			return
		}
		for _, j := range subs.Journalists {
			if j.ID == journalist.ID {
				view.Subscribed = true
				break
			}
		}
	}

	renderPage(w, r, h.renderer, "journalist", journalist.Username, view)
}
