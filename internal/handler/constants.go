// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration. Every page route
// ends with a slash; AppendSlash redirects the bare form.
const (
	RouteRoot   = "/"
	RouteLogin  = "/login/"
	RouteLogout = "/logout/"

	RouteArticle    = "/articles/{id}/"
	RoutePublishers = "/publishers/"
	RoutePublisher  = "/publishers/{slug}/"
	RouteJournalist = "/journalists/{id}/"

	RouteSubscriptions         = "/subscriptions/"
	RouteSubscribePublisher    = "/subscriptions/publishers/{id}/"
	RouteUnsubscribePublisher  = "/subscriptions/publishers/{id}/delete/"
	RouteSubscribeJournalist   = "/subscriptions/journalists/{id}/"
	RouteUnsubscribeJournalist = "/subscriptions/journalists/{id}/delete/"

	RouteEditorReview        = "/editor/review/"
	RouteEditorApprove       = "/editor/approve/{id}/"
	RouteEditorDeleteArticle = "/editor/articles/{id}/delete/"
	RouteEditorPublishers    = "/editor/publishers/"

	RouteJournalistArticles      = "/journalist/articles/"
	RouteJournalistArticleNew    = "/journalist/articles/new/"
	RouteJournalistArticle       = "/journalist/articles/{id}/"
	RouteJournalistArticleEdit   = "/journalist/articles/{id}/edit/"
	RouteJournalistArticleDelete = "/journalist/articles/{id}/delete/"

	RouteAPI        = "/api"
	RouteHealth     = "/health"
	RouteHealthLive = "/health/live"
	RouteMetrics    = "/metrics"
)

// Route parameter names.
const (
	routeParamID   = "id"
	routeParamSlug = "slug"
)

// Redirect targets.
const (
	redirectEditorReview           = RouteEditorReview
	redirectJournalistArticles     = RouteJournalistArticles
	redirectSubscriptions          = RouteSubscriptions
	redirectPublishers             = RoutePublishers
	redirectJournalistArticleEditF = "/journalist/articles/%d/edit/"
	actionJournalistArticleF       = "/journalist/articles/%d/"
	redirectPublisherF             = "/publishers/%s/"
	redirectArticleF               = "/articles/%d/"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
