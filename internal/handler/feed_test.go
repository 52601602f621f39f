// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk/internal/testutil"
)

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Public story", AuthorID: env.journalist.ID, Approved: true})
	testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Draft story", AuthorID: env.journalist.ID})

	rec := env.request(http.MethodGet, RouteRoot, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Latest articles")
	assert.Contains(t, rec.Body.String(), "Public story")
	assert.NotContains(t, rec.Body.String(), "Draft story")

	rec = env.request(http.MethodGet, RouteRoot, nil, env.login("rita"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your feed")
	assert.NotContains(t, rec.Body.String(), "Public story", "nothing followed yet")
}

func TestArticlePage(t *testing.T) {
	env := newTestEnv(t)
	approved := testutil.CreateArticle(t, env.db, testutil.ArticleOpts{
		Title:    "Markdown story",
		Content:  "**bold** <script>alert(1)</script>",
		AuthorID: env.journalist.ID,
		Approved: true,
	})
	pending := testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Pending story", AuthorID: env.journalist.ID})

	rec := env.request(http.MethodGet, fmt.Sprintf("/articles/%d/", approved.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")

	pendingURL := fmt.Sprintf("/articles/%d/", pending.ID)
	assert.Equal(t, http.StatusNotFound, env.request(http.MethodGet, pendingURL, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.request(http.MethodGet, pendingURL, nil, env.login("rita")).Code)

	rec = env.request(http.MethodGet, pendingURL, nil, env.login("ed"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`action="/editor/approve/%d/"`, pending.ID))
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/journalist/articles/%d/edit/"`, pending.ID), "editors edit any article")
	assert.NotContains(t, rec.Body.String(), "Withdraw")

	rec = env.request(http.MethodGet, pendingURL, nil, env.login("jo"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/journalist/articles/%d/edit/"`, pending.ID))
	assert.NotContains(t, rec.Body.String(), "/editor/approve/")
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`action="/journalist/articles/%d/delete/"`, pending.ID))
}

func TestPublisherPages(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Post story", AuthorID: env.journalist.ID, PublisherID: env.dailyPost.ID, Approved: true})

	rec := env.request(http.MethodGet, RoutePublishers, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/publishers/the-daily-post/")

	rec = env.request(http.MethodGet, "/publishers/the-daily-post/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post story")

	assert.Equal(t, http.StatusNotFound, env.request(http.MethodGet, "/publishers/missing/", nil, nil).Code)
}

func TestSubscribeFromPublisherPage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Post story", AuthorID: env.journalist.ID, PublisherID: env.dailyPost.ID, Approved: true})
	reader := env.login("rita")

	rec := env.request(http.MethodPost, fmt.Sprintf("/subscriptions/publishers/%d/", env.dailyPost.ID), url.Values{}, reader,
		"Referer", "http://example.com/publishers/the-daily-post/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/publishers/the-daily-post/", rec.Header().Get("Location"))

	rec = env.request(http.MethodGet, RouteRoot, nil, reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post story")

	rec = env.request(http.MethodGet, RouteSubscriptions, nil, reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Daily Post")

	rec = env.request(http.MethodPost, fmt.Sprintf("/subscriptions/publishers/%d/delete/", env.dailyPost.ID), url.Values{}, reader)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteSubscriptions, rec.Header().Get("Location"), "no referer falls back to the subscriptions page")
}

func TestJournalistPage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateArticle(t, env.db, testutil.ArticleOpts{Title: "Column", AuthorID: env.journalist.ID, Approved: true})
	target := fmt.Sprintf("/journalists/%d/", env.journalist.ID)

	rec := env.request(http.MethodGet, target, nil, env.login("rita"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Column")
	assert.Contains(t, rec.Body.String(), "Follow")

	rec = env.request(http.MethodGet, fmt.Sprintf("/journalists/%d/", env.reader.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(http.MethodPost, fmt.Sprintf("/subscriptions/journalists/%d/", env.journalist.ID), url.Values{}, env.login("jo"))
	assert.Equal(t, http.StatusSeeOther, rec.Code, "self-subscription is refused with a flash")
}

func TestSubscriptions_RequireLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, fmt.Sprintf("/subscriptions/publishers/%d/", env.dailyPost.ID), url.Values{}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/login/?next=%%2Fsubscriptions%%2Fpublishers%%2F%d%%2F", env.dailyPost.ID), rec.Header().Get("Location"))
}

func TestNotFoundPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/no/such/page/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}
