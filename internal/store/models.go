// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID                                int64        `json:"id"`
	Username                          string       `json:"username"`
	Email                             string       `json:"email"`
	PasswordHash                      string       `json:"-"`
	ArticlesPublishedIndependently    int64        `json:"articles_published_independently"`
	NewslettersPublishedIndependently int64        `json:"newsletters_published_independently"`
	CreatedAt                         time.Time    `json:"created_at"`
	LastLoginAt                       sql.NullTime `json:"last_login_at"`
}

type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Publisher struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Article struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	IsApproved  bool          `json:"is_approved"`
	ApprovedAt  sql.NullTime  `json:"approved_at"`
	ApprovedBy  sql.NullInt64 `json:"approved_by"`
	AuthorID    int64         `json:"author_id"`
	PublisherID sql.NullInt64 `json:"publisher_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ArticleRow is an article joined with its author and publisher names.
type ArticleRow struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	IsApproved     bool           `json:"is_approved"`
	AuthorID       int64          `json:"author_id"`
	AuthorUsername string         `json:"author_username"`
	PublisherID    sql.NullInt64  `json:"publisher_id"`
	PublisherName  sql.NullString `json:"publisher_name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	IpAddress string        `json:"ip_address"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
