// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/store"
	"github.com/olegiv/newsdesk/internal/testutil"
)

func newApprovalService(n *newsroom, notifier Notifier) *ApprovalService {
	return NewApprovalService(n.db, ApprovalDeps{
		Notifier: notifier,
		Events:   NewEventService(n.db),
		Metrics:  metrics.New(),
		BaseURL:  "http://news.example.com/",
		Logger:   testutil.TestLoggerSilent(),
	})
}

func TestApprove_NotifiesOnce(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newApprovalService(n, notifier)

	article := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{
		Title:       "Budget passes",
		Content:     "The council approved the budget.",
		AuthorID:    n.journalist.ID,
		PublisherID: n.dailyPost.ID,
	})

	result, err := svc.Approve(ctx, article.ID, n.editorID())
	require.NoError(t, err)
	assert.Equal(t, ResultApproved, result)

	result, err = svc.Approve(ctx, article.ID, n.editorID())
	require.NoError(t, err)
	assert.Equal(t, ResultAlreadyApproved, result)

	events := notifier.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, article.ID, ev.ArticleID)
	assert.Equal(t, "Budget passes", ev.Title)
	assert.Equal(t, "jo", ev.AuthorUsername)
	assert.Equal(t, n.dailyPost.ID, ev.PublisherID)
	assert.Equal(t, "The Daily Post", ev.PublisherName)
	assert.Equal(t, n.editor.ID, ev.ApprovedBy)
	assert.Equal(t, ArticleURL("http://news.example.com", article.ID), ev.ArticleURL)
	assert.NotEmpty(t, ev.ID)

	stored, err := store.New(n.db).GetArticleByID(ctx, article.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
	assert.True(t, stored.ApprovedBy.Valid)
	assert.Equal(t, n.editor.ID, stored.ApprovedBy.Int64)
	assert.Equal(t, article.CreatedAt, stored.CreatedAt, "created_at is immutable")

	audit, err := NewEventService(n.db).ListByCategory(ctx, model.EventCategoryApproval, 10)
	require.NoError(t, err)
	assert.Len(t, audit, 1)
}

func TestApprove_Concurrent(t *testing.T) {
	n := newNewsroom(t)
	notifier := &recordingNotifier{}
	svc := newApprovalService(n, notifier)
	article := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "race", AuthorID: n.journalist.ID})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]ApprovalResult, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Approve(context.Background(), article.ID, n.editorID())
		}(i)
	}
	wg.Wait()

	approved := 0
	for i := range callers {
		require.NoError(t, errs[i])
		if results[i] == ResultApproved {
			approved++
		}
	}
	assert.Equal(t, 1, approved)
	assert.Len(t, notifier.Events(), 1)
}

func TestApprove_Errors(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newApprovalService(n, notifier)
	article := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "pending", AuthorID: n.journalist.ID})

	_, err := svc.Approve(ctx, 9999, n.editorID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Approve(ctx, article.ID, n.journalistID())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Approve(ctx, article.ID, auth.Anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	stored, err := store.New(n.db).GetArticleByID(ctx, article.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsApproved)
	assert.Empty(t, notifier.Events())
}

func TestApprove_ZeroSubscribersSendsNoEmail(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()

	mailer := &countingMailer{}
	dispatcher := notify.NewDispatcher(notify.Dependencies{
		Recipients: store.New(n.db),
		Mailer:     mailer,
		Logger:     testutil.TestLoggerSilent(),
	}, notify.Config{})
	svc := newApprovalService(n, dispatcher)

	article := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "lonely", AuthorID: n.journalist.ID, PublisherID: n.techWeekly.ID})

	result, err := svc.Approve(ctx, article.ID, n.editorID())
	require.NoError(t, err)
	assert.Equal(t, ResultApproved, result)
	assert.Zero(t, mailer.count)
}

func TestApprove_MailFailureKeepsApproval(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	testutil.SubscribePublisher(t, n.db, n.reader.ID, n.dailyPost.ID)

	dispatcher := notify.NewDispatcher(notify.Dependencies{
		Recipients: store.New(n.db),
		Mailer:     &countingMailer{err: errors.New("relay refused")},
		Events:     NewEventService(n.db),
		Logger:     testutil.TestLoggerSilent(),
	}, notify.Config{})
	svc := newApprovalService(n, dispatcher)

	article := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "news", AuthorID: n.journalist.ID, PublisherID: n.dailyPost.ID})

	result, err := svc.Approve(ctx, article.ID, n.editorID())
	require.NoError(t, err)
	assert.Equal(t, ResultApproved, result)

	stored, err := store.New(n.db).GetArticleByID(ctx, article.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)

	failures, err := NewEventService(n.db).ListByCategory(ctx, model.EventCategoryNotification, 10)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, model.EventLevelError, failures[0].Level)
}

func TestApprove_EditDoesNotRenotify(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	approvals := newApprovalService(n, notifier)
	articles := NewArticleService(n.db, nil, testutil.TestLoggerSilent())

	article, err := articles.Create(ctx, n.journalistID(), ArticleInput{Title: "draft", Content: "body", PublisherID: n.dailyPost.ID})
	require.NoError(t, err)

	_, err = approvals.Approve(ctx, article.ID, n.editorID())
	require.NoError(t, err)

	updated, err := articles.Update(ctx, n.journalistID(), article.ID, ArticleInput{Title: "final", Content: "new body", PublisherID: n.dailyPost.ID})
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)
	assert.Equal(t, "final", updated.Title)
	assert.Len(t, notifier.Events(), 1)
}

func TestReviewQueue(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	svc := newApprovalService(n, nil)

	testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "first", AuthorID: n.journalist.ID, PublisherID: n.dailyPost.ID})
	testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "done", AuthorID: n.journalist.ID, Approved: true})
	testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "second", AuthorID: n.journalist.ID})

	queue, err := svc.ReviewQueue(ctx, n.editorID())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, titles(queue))

	count, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.ReviewQueue(ctx, n.readerID())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestArticleURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/articles/7/", ArticleURL("http://localhost:8080", 7))
	assert.Equal(t, "http://localhost:8080/articles/7/", ArticleURL("http://localhost:8080/", 7))
}

type countingMailer struct {
	mu    sync.Mutex
	count int
	err   error
}

func (m *countingMailer) Send(context.Context, notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return m.err
}

func TestApprove_CountsIndependentArticles(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	svc := newApprovalService(n, nil)

	independent := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "column", AuthorID: n.journalist.ID})
	published := testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "report", AuthorID: n.journalist.ID, PublisherID: n.dailyPost.ID})

	for _, id := range []int64{independent.ID, published.ID, independent.ID} {
		_, err := svc.Approve(ctx, id, n.editorID())
		require.NoError(t, err)
	}

	author, err := store.New(n.db).GetUserByID(ctx, n.journalist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), author.ArticlesPublishedIndependently)
}
