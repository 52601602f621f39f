// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const articleColumns = `id, title, content, is_approved, approved_at, approved_by,
	author_id, publisher_id, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (Article, error) {
	var a Article
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.IsApproved,
		&a.ApprovedAt,
		&a.ApprovedBy,
		&a.AuthorID,
		&a.PublisherID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// articleRowSelect joins the author (required) and publisher (optional).
const articleRowSelect = `
SELECT a.id, a.title, a.content, a.is_approved, a.author_id, u.username,
	a.publisher_id, p.name, a.created_at, a.updated_at
FROM articles a
JOIN users u ON u.id = a.author_id
LEFT JOIN publishers p ON p.id = a.publisher_id`

func scanArticleRow(row interface{ Scan(...any) error }) (ArticleRow, error) {
	var a ArticleRow
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.IsApproved,
		&a.AuthorID,
		&a.AuthorUsername,
		&a.PublisherID,
		&a.PublisherName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func collectArticleRows(ctx context.Context, q *Queries, query string, args ...any) ([]ArticleRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleRow
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const createArticle = `
INSERT INTO articles (title, content, is_approved, author_id, publisher_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateArticleParams struct {
	Title       string
	Content     string
	IsApproved  bool
	AuthorID    int64
	PublisherID sql.NullInt64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	result, err := q.db.ExecContext(ctx, createArticle,
		arg.Title,
		arg.Content,
		arg.IsApproved,
		arg.AuthorID,
		arg.PublisherID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return Article{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Article{}, err
	}
	return q.GetArticleByID(ctx, id)
}

const getArticleByID = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

func (q *Queries) GetArticleByID(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleByID, id))
}

const getArticleRow = articleRowSelect + ` WHERE a.id = ?`

func (q *Queries) GetArticleRow(ctx context.Context, id int64) (ArticleRow, error) {
	return scanArticleRow(q.db.QueryRowContext(ctx, getArticleRow, id))
}

const updateArticleContent = `
UPDATE articles SET title = ?, content = ?, publisher_id = ?, updated_at = ?
WHERE id = ?`

type UpdateArticleContentParams struct {
	Title       string
	Content     string
	PublisherID sql.NullInt64
	UpdatedAt   time.Time
	ID          int64
}

// UpdateArticleContent edits an article without touching its approval state.
func (q *Queries) UpdateArticleContent(ctx context.Context, arg UpdateArticleContentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateArticleContent,
		arg.Title,
		arg.Content,
		arg.PublisherID,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const approveArticle = `
UPDATE articles SET is_approved = 1, approved_at = ?, approved_by = ?, updated_at = ?
WHERE id = ? AND is_approved = 0`

type ApproveArticleParams struct {
	ApprovedAt time.Time
	ApprovedBy sql.NullInt64
	ID         int64
}

// ApproveArticle flips is_approved from false to true. It returns the number
// of rows changed: 1 exactly once per article, 0 when the article is missing
// or already approved.
func (q *Queries) ApproveArticle(ctx context.Context, arg ApproveArticleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, approveArticle,
		arg.ApprovedAt,
		arg.ApprovedBy,
		arg.ApprovedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteArticle = `DELETE FROM articles WHERE id = ?`

func (q *Queries) DeleteArticle(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteArticle, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listUnapprovedArticles = articleRowSelect + `
WHERE a.is_approved = 0
ORDER BY a.created_at ASC, a.id ASC`

// ListUnapprovedArticles returns the review queue, oldest first.
func (q *Queries) ListUnapprovedArticles(ctx context.Context) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listUnapprovedArticles)
}

const countUnapprovedArticles = `SELECT COUNT(*) FROM articles WHERE is_approved = 0`

func (q *Queries) CountUnapprovedArticles(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnapprovedArticles).Scan(&count)
	return count, err
}

const listArticlesByAuthor = articleRowSelect + `
WHERE a.author_id = ?
ORDER BY a.created_at DESC, a.id DESC`

func (q *Queries) ListArticlesByAuthor(ctx context.Context, authorID int64) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listArticlesByAuthor, authorID)
}

const listApprovedArticles = articleRowSelect + `
WHERE a.is_approved = 1
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?`

func (q *Queries) ListApprovedArticles(ctx context.Context, limit int64) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listApprovedArticles, limit)
}

const listApprovedArticlesByPublisher = articleRowSelect + `
WHERE a.is_approved = 1 AND a.publisher_id = ?
ORDER BY a.created_at DESC, a.id DESC`

func (q *Queries) ListApprovedArticlesByPublisher(ctx context.Context, publisherID int64) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listApprovedArticlesByPublisher, publisherID)
}

const listApprovedArticlesByAuthor = articleRowSelect + `
WHERE a.is_approved = 1 AND a.author_id = ?
ORDER BY a.created_at DESC, a.id DESC`

func (q *Queries) ListApprovedArticlesByAuthor(ctx context.Context, authorID int64) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listApprovedArticlesByAuthor, authorID)
}

// listSubscribedArticles selects approved articles whose publisher or author
// the reader subscribes to. Membership is tested with IN over the
// subscription tables, so an article matching both clauses is returned once.
const listSubscribedArticles = articleRowSelect + `
WHERE a.is_approved = 1
	AND (
		a.publisher_id IN (SELECT ps.publisher_id FROM publisher_subscriptions ps WHERE ps.user_id = ?)
		OR a.author_id IN (SELECT js.journalist_id FROM journalist_subscriptions js WHERE js.subscriber_id = ?)
	)
ORDER BY a.created_at DESC, a.id DESC`

func (q *Queries) ListSubscribedArticles(ctx context.Context, readerID int64) ([]ArticleRow, error) {
	return collectArticleRows(ctx, q, listSubscribedArticles, readerID, readerID)
}
