// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/handler/api"
	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
)

// DefaultRequestTimeout bounds the handling time of a single request.
const DefaultRequestTimeout = 30 * time.Second

// Services are the application services the routes call into.
type Services struct {
	Users         *service.UserService
	Articles      *service.ArticleService
	Feed          *service.FeedService
	Publishers    *service.PublisherService
	Subscriptions *service.SubscriptionService
	Approval      *service.ApprovalService
	Events        *service.EventService
}

// RouterConfig holds everything NewRouter wires together. Metrics,
// LoginProtection and APIRateLimit are optional.
type RouterConfig struct {
	DB              *sql.DB
	Renderer        *render.Renderer
	SessionManager  *scs.SessionManager
	Services        Services
	Metrics         *metrics.Metrics
	LoginProtection *middleware.LoginProtection
	APIRateLimit    *middleware.APIRateLimit
	CSRF            middleware.CSRFConfig
	IsDevelopment   bool
	Build           BuildInfo
	RequestTimeout  time.Duration
}

// NewRouter builds the application router with the full middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	svc := cfg.Services
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	var audit middleware.AuditLogger
	if svc.Events != nil {
		audit = svc.Events
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.AppendSlash(RouteMetrics, RouteHealth))
	r.Use(middleware.RequestPath)
	r.Use(cfg.SessionManager.LoadAndSave)
	r.Use(middleware.LoadIdentity(cfg.SessionManager, svc.Users))
	r.Use(middleware.CSRF(cfg.CSRF))

	authHandler := NewAuthHandler(svc.Users, svc.Events, cfg.Renderer, cfg.SessionManager, cfg.LoginProtection)
	readerHandler := NewReaderHandler(cfg.Renderer, svc.Articles, svc.Feed, svc.Publishers, svc.Subscriptions, svc.Users)
	editorHandler := NewEditorHandler(cfg.Renderer, svc.Approval, svc.Articles, svc.Publishers)
	journalistHandler := NewJournalistHandler(cfg.Renderer, svc.Articles, svc.Publishers)
	subscriptionHandler := NewSubscriptionHandler(cfg.Renderer, svc.Subscriptions)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Build)
	apiHandler := api.NewHandler(svc.Feed, svc.Publishers, svc.Subscriptions)

	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteHealthLive, healthHandler.Liveness)
	if cfg.Metrics != nil {
		r.Handle(RouteMetrics, cfg.Metrics.Handler())
	}

	// Public pages
	r.Get(RouteRoot, readerHandler.Home)
	r.Get(RouteArticle, readerHandler.Article)
	r.Get(RoutePublishers, readerHandler.Publishers)
	r.Get(RoutePublisher, readerHandler.Publisher)
	r.Get(RouteJournalist, readerHandler.Journalist)

	r.Group(func(r chi.Router) {
		r.Get(RouteLogin, authHandler.LoginForm)
		if cfg.LoginProtection != nil {
			r.With(cfg.LoginProtection.Middleware()).Post(RouteLogin, authHandler.Login)
		} else {
			r.Post(RouteLogin, authHandler.Login)
		}
		r.Post(RouteLogout, authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperation(auth.OpManageSubscriptions, audit))
		r.Get(RouteSubscriptions, subscriptionHandler.List)
		r.Post(RouteSubscribePublisher, subscriptionHandler.SubscribePublisher)
		r.Post(RouteUnsubscribePublisher, subscriptionHandler.UnsubscribePublisher)
		r.Post(RouteSubscribeJournalist, subscriptionHandler.SubscribeJournalist)
		r.Post(RouteUnsubscribeJournalist, subscriptionHandler.UnsubscribeJournalist)
	})

	// Editor routes
	r.With(middleware.RequireOperation(auth.OpReviewArticles, audit)).Get(RouteEditorReview, editorHandler.Review)
	r.With(middleware.RequireOperation(auth.OpApproveArticle, audit)).Post(RouteEditorApprove, editorHandler.Approve)
	r.With(middleware.RequireOperation(auth.OpDeleteArticle, audit)).Post(RouteEditorDeleteArticle, editorHandler.DeleteArticle)
	r.With(middleware.RequireOperation(auth.OpManagePublishers, audit)).Post(RouteEditorPublishers, editorHandler.CreatePublisher)

	// Journalist routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperation(auth.OpAuthorArticle, audit))
		r.Get(RouteJournalistArticles, journalistHandler.List)
		r.Post(RouteJournalistArticles, journalistHandler.Create)
		r.Get(RouteJournalistArticleNew, journalistHandler.NewForm)
		r.Post(RouteJournalistArticleDelete, journalistHandler.Delete)
	})

	// Editing is open to the author and to editors
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperation(auth.OpEditArticle, audit))
		r.Post(RouteJournalistArticle, journalistHandler.Update)
		r.Get(RouteJournalistArticleEdit, journalistHandler.EditForm)
	})

	r.Mount(RouteAPI, apiHandler.Routes(audit, cfg.APIRateLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, cfg.Renderer, http.StatusNotFound, "The page you are looking for does not exist.")
	})

	return r
}
