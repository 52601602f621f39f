// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
)

// Demo accounts created by Seed. All share DefaultSeedPassword.
const (
	DefaultEditorUsername     = "editor"
	DefaultJournalistUsername = "journalist"
	DefaultReaderUsername     = "reader"
	DefaultSeedPassword       = "changeme"
)

type seedUser struct {
	username string
	email    string
	groups   []string
}

var seedUsers = []seedUser{
	{DefaultEditorUsername, "editor@example.com", []string{auth.GroupEditor}},
	{DefaultJournalistUsername, "journalist@example.com", []string{auth.GroupJournalist}},
	{DefaultReaderUsername, "reader@example.com", []string{auth.GroupReader}},
}

var seedPublishers = []CreatePublisherParams{
	{Name: "The Daily Post", Slug: "the-daily-post", Description: "General news, every morning."},
	{Name: "Tech Weekly", Slug: "tech-weekly", Description: "Software, hardware and the people who build them."},
}

// Seed creates demo users and publishers. It is a no-op when the editor
// account already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByUsername(ctx, DefaultEditorUsername)
	if err == nil {
		slog.Info("demo users already exist, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for editor user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultSeedPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	return RunInTx(ctx, db, func(q *Queries) error {
		var journalistID int64
		for _, su := range seedUsers {
			user, err := q.CreateUser(ctx, CreateUserParams{
				Username:     su.username,
				Email:        su.email,
				PasswordHash: passwordHash,
				CreatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("creating user %s: %w", su.username, err)
			}
			for _, g := range su.groups {
				if _, err := q.AddUserToGroup(ctx, AddUserToGroupParams{UserID: user.ID, GroupName: g}); err != nil {
					return fmt.Errorf("adding %s to %s: %w", su.username, g, err)
				}
			}
			if su.username == DefaultJournalistUsername {
				journalistID = user.ID
			}
		}

		for _, p := range seedPublishers {
			p.CreatedAt = now
			pub, err := q.CreatePublisher(ctx, p)
			if err != nil {
				return fmt.Errorf("creating publisher %s: %w", p.Name, err)
			}
			if _, err := q.CreateArticle(ctx, CreateArticleParams{
				Title:       "Welcome to " + pub.Name,
				Content:     "This is the first article submitted to " + pub.Name + ". An editor still has to approve it.",
				AuthorID:    journalistID,
				PublisherID: sql.NullInt64{Int64: pub.ID, Valid: true},
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return fmt.Errorf("creating article for %s: %w", p.Name, err)
			}
		}

		slog.Info("seeded demo data",
			"users", len(seedUsers),
			"publishers", len(seedPublishers),
			"password", DefaultSeedPassword,
		)
		return nil
	})
}
