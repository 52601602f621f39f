// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain views shared by services, handlers and
// templates.
package model

import (
	"time"

	"github.com/olegiv/newsdesk/internal/store"
)

// AuthorRef identifies an article's author.
type AuthorRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// PublisherRef identifies an article's publisher.
type PublisherRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Article is an article with its author and optional publisher resolved.
// It is the shape returned by the subscribed-articles API, so it carries no
// approval fields.
type Article struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    AuthorRef     `json:"author"`
	Publisher *PublisherRef `json:"publisher"`
	CreatedAt time.Time     `json:"created_at"`

	IsApproved bool      `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// ArticleFromRow converts a joined store row.
func ArticleFromRow(row store.ArticleRow) Article {
	a := Article{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		Author:     AuthorRef{ID: row.AuthorID, Username: row.AuthorUsername},
		CreatedAt:  row.CreatedAt,
		IsApproved: row.IsApproved,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.PublisherID.Valid {
		a.Publisher = &PublisherRef{ID: row.PublisherID.Int64, Name: row.PublisherName.String}
	}
	return a
}

// ArticlesFromRows converts rows, always returning a non-nil slice.
func ArticlesFromRows(rows []store.ArticleRow) []Article {
	out := make([]Article, 0, len(rows))
	for _, r := range rows {
		out = append(out, ArticleFromRow(r))
	}
	return out
}

// Excerpt returns the first n characters (runes) of s.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
