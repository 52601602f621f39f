// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const publisherColumns = `id, name, slug, description, created_at`

func scanPublisher(row interface{ Scan(...any) error }) (Publisher, error) {
	var p Publisher
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedAt)
	return p, err
}

func collectPublishers(ctx context.Context, q *Queries, query string, args ...any) ([]Publisher, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Publisher
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createPublisher = `
INSERT INTO publishers (name, slug, description, created_at)
VALUES (?, ?, ?, ?)`

type CreatePublisherParams struct {
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

func (q *Queries) CreatePublisher(ctx context.Context, arg CreatePublisherParams) (Publisher, error) {
	result, err := q.db.ExecContext(ctx, createPublisher, arg.Name, arg.Slug, arg.Description, arg.CreatedAt)
	if err != nil {
		return Publisher{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Publisher{}, err
	}
	return q.GetPublisherByID(ctx, id)
}

const getPublisherByID = `SELECT ` + publisherColumns + ` FROM publishers WHERE id = ?`

func (q *Queries) GetPublisherByID(ctx context.Context, id int64) (Publisher, error) {
	return scanPublisher(q.db.QueryRowContext(ctx, getPublisherByID, id))
}

const getPublisherBySlug = `SELECT ` + publisherColumns + ` FROM publishers WHERE slug = ?`

func (q *Queries) GetPublisherBySlug(ctx context.Context, slug string) (Publisher, error) {
	return scanPublisher(q.db.QueryRowContext(ctx, getPublisherBySlug, slug))
}

const getPublisherByName = `SELECT ` + publisherColumns + ` FROM publishers WHERE name = ?`

func (q *Queries) GetPublisherByName(ctx context.Context, name string) (Publisher, error) {
	return scanPublisher(q.db.QueryRowContext(ctx, getPublisherByName, name))
}

const listPublishers = `SELECT ` + publisherColumns + ` FROM publishers ORDER BY name`

func (q *Queries) ListPublishers(ctx context.Context) ([]Publisher, error) {
	return collectPublishers(ctx, q, listPublishers)
}

const updatePublisherDescription = `UPDATE publishers SET description = ? WHERE id = ?`

type UpdatePublisherDescriptionParams struct {
	Description string
	ID          int64
}

func (q *Queries) UpdatePublisherDescription(ctx context.Context, arg UpdatePublisherDescriptionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePublisherDescription, arg.Description, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePublisher = `DELETE FROM publishers WHERE id = ?`

func (q *Queries) DeletePublisher(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePublisher, id)
	return err
}
