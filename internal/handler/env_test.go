// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/session"
	"github.com/olegiv/newsdesk/internal/store"
	"github.com/olegiv/newsdesk/internal/testutil"
	"github.com/olegiv/newsdesk/web"
)

const testPassword = "correct horse battery"

var (
	testHashOnce sync.Once
	testHash     string
)

// passwordHash hashes testPassword once per test binary.
func passwordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		h, err := auth.HashPassword(testPassword)
		require.NoError(t, err)
		testHash = h
	})
	return testHash
}

// recordingNotifier counts approval events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.ApprovalEvent
}

func (n *recordingNotifier) ArticleApproved(_ context.Context, ev notify.ApprovalEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// testEnv is a full application router over a fresh database with one
// user per role and one publisher.
type testEnv struct {
	t          *testing.T
	db         *sql.DB
	router     http.Handler
	notifier   *recordingNotifier
	editor     store.User
	journalist store.User
	reader     store.User
	dailyPost  store.Publisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm, IsDev: true})
	require.NoError(t, err)

	logger := testutil.TestLoggerSilent()
	events := service.NewEventService(db)
	notifier := &recordingNotifier{}

	router := NewRouter(RouterConfig{
		DB:             db,
		Renderer:       renderer,
		SessionManager: sm,
		Services: Services{
			Users:         service.NewUserService(db, logger),
			Articles:      service.NewArticleService(db, events, logger),
			Feed:          service.NewFeedService(db),
			Publishers:    service.NewPublisherService(db),
			Subscriptions: service.NewSubscriptionService(db, events),
			Approval: service.NewApprovalService(db, service.ApprovalDeps{
				Notifier: notifier,
				Events:   events,
				BaseURL:  "http://news.test",
				Logger:   logger,
			}),
			Events: events,
		},
		Metrics:       metrics.New(),
		APIRateLimit:  middleware.NewAPIRateLimit(1000, 1000),
		CSRF:          middleware.DefaultCSRFConfig([]byte("test-session-secret-for-handlers-0123"), true, 8080),
		IsDevelopment: true,
	})

	hash := passwordHash(t)
	return &testEnv{
		t:          t,
		db:         db,
		router:     router,
		notifier:   notifier,
		editor:     testutil.CreateUserWithHash(t, db, "ed", "ed@example.com", hash, auth.GroupEditor),
		journalist: testutil.CreateUserWithHash(t, db, "jo", "jo@example.com", hash, auth.GroupJournalist),
		reader:     testutil.CreateUserWithHash(t, db, "rita", "rita@example.com", hash, auth.GroupReader),
		dailyPost:  testutil.CreatePublisher(t, db, "The Daily Post", "the-daily-post"),
	}
}

// request performs a request against the router. A non-nil form is sent
// url-encoded.
func (e *testEnv) request(method, target string, form url.Values, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login signs username in and returns the session cookies.
func (e *testEnv) login(username string) []*http.Cookie {
	e.t.Helper()

	rec := e.request(http.MethodPost, RouteLogin, url.Values{
		"username": {username},
		"password": {testPassword},
		"next":     {"/"},
	}, nil)
	require.Equal(e.t, http.StatusSeeOther, rec.Code, "login %s", username)
	require.Equal(e.t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(e.t, cookies, "login must set a session cookie")
	return cookies
}

func (e *testEnv) article(id int64) store.Article {
	e.t.Helper()
	a, err := store.New(e.db).GetArticleByID(context.Background(), id)
	require.NoError(e.t, err)
	return a
}
