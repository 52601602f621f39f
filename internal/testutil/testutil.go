// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers: a migrated temporary
// database, quiet loggers and fixture builders.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olegiv/newsdesk/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database with migrations applied. It is
// closed automatically when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "newsdesk-test.db")
	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// clock hands out strictly increasing timestamps so fixtures have a
// deterministic created_at order.
var clock atomic.Int64

func init() {
	clock.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
}

// NextTime returns a UTC timestamp one second after the previous call.
func NextTime() time.Time {
	return time.Unix(clock.Add(1), 0).UTC()
}

// CreateUser inserts a user with the given groups. The password hash is a
// placeholder; use auth.HashPassword when a test needs to log in.
func CreateUser(t *testing.T, db *sql.DB, username, email string, groups ...string) store.User {
	t.Helper()
	return CreateUserWithHash(t, db, username, email, "x", groups...)
}

// CreateUserWithHash inserts a user with an explicit password hash.
func CreateUserWithHash(t *testing.T, db *sql.DB, username, email, hash string, groups ...string) store.User {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    NextTime(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	for _, g := range groups {
		n, err := q.AddUserToGroup(ctx, store.AddUserToGroupParams{UserID: user.ID, GroupName: g})
		if err != nil || n != 1 {
			t.Fatalf("AddUserToGroup(%s, %s): n=%d err=%v", username, g, n, err)
		}
	}
	return user
}

// CreatePublisher inserts a publisher.
func CreatePublisher(t *testing.T, db *sql.DB, name, slug string) store.Publisher {
	t.Helper()
	p, err := store.New(db).CreatePublisher(context.Background(), store.CreatePublisherParams{
		Name:      name,
		Slug:      slug,
		CreatedAt: NextTime(),
	})
	if err != nil {
		t.Fatalf("CreatePublisher(%s): %v", name, err)
	}
	return p
}

// ArticleOpts describes a fixture article.
type ArticleOpts struct {
	Title       string
	Content     string
	AuthorID    int64
	PublisherID int64 // 0 for an independent article
	Approved    bool
}

// CreateArticle inserts an article. Approved fixtures are written approved
// directly, without going through the approval workflow.
func CreateArticle(t *testing.T, db *sql.DB, opts ArticleOpts) store.Article {
	t.Helper()
	now := NextTime()
	if opts.Content == "" {
		opts.Content = "Content of " + opts.Title
	}
	a, err := store.New(db).CreateArticle(context.Background(), store.CreateArticleParams{
		Title:       opts.Title,
		Content:     opts.Content,
		IsApproved:  opts.Approved,
		AuthorID:    opts.AuthorID,
		PublisherID: sql.NullInt64{Int64: opts.PublisherID, Valid: opts.PublisherID != 0},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateArticle(%s): %v", opts.Title, err)
	}
	return a
}

// SubscribePublisher subscribes userID to publisherID.
func SubscribePublisher(t *testing.T, db *sql.DB, userID, publisherID int64) {
	t.Helper()
	if err := store.New(db).SubscribeToPublisher(context.Background(), store.PublisherSubscriptionParams{
		UserID:      userID,
		PublisherID: publisherID,
		CreatedAt:   NextTime(),
	}); err != nil {
		t.Fatalf("SubscribeToPublisher: %v", err)
	}
}

// SubscribeJournalist subscribes subscriberID to journalistID.
func SubscribeJournalist(t *testing.T, db *sql.DB, subscriberID, journalistID int64) {
	t.Helper()
	if err := store.New(db).SubscribeToJournalist(context.Background(), store.JournalistSubscriptionParams{
		SubscriberID: subscriberID,
		JournalistID: journalistID,
		CreatedAt:    NextTime(),
	}); err != nil {
		t.Fatalf("SubscribeToJournalist: %v", err)
	}
}
