// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/store"
	"github.com/olegiv/newsdesk/internal/util"
)

// PublisherService manages publishers.
type PublisherService struct {
	queries *store.Queries
}

// NewPublisherService creates a new PublisherService.
func NewPublisherService(db *sql.DB) *PublisherService {
	return &PublisherService{queries: store.New(db)}
}

// List returns all publishers ordered by name.
func (s *PublisherService) List(ctx context.Context) ([]store.Publisher, error) {
	publishers, err := s.queries.ListPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing publishers: %w", err)
	}
	if publishers == nil {
		publishers = []store.Publisher{}
	}
	return publishers, nil
}

// GetBySlug returns the publisher with the given slug.
func (s *PublisherService) GetBySlug(ctx context.Context, slug string) (store.Publisher, error) {
	p, err := s.queries.GetPublisherBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Publisher{}, fmt.Errorf("publisher %q: %w", slug, ErrNotFound)
	}
	return p, err
}

// GetByID returns the publisher with the given id.
func (s *PublisherService) GetByID(ctx context.Context, id int64) (store.Publisher, error) {
	p, err := s.queries.GetPublisherByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Publisher{}, fmt.Errorf("publisher %d: %w", id, ErrNotFound)
	}
	return p, err
}

// Create adds a publisher. The slug is derived from the name.
func (s *PublisherService) Create(ctx context.Context, actor auth.Identity, name, description string) (store.Publisher, error) {
	if err := authorize(actor, auth.OpManagePublishers); err != nil {
		return store.Publisher{}, err
	}

	name = strings.TrimSpace(name)
	base := util.Slugify(name)

	verr := newValidationError(ErrInvalidPublisher)
	switch {
	case name == "":
		verr.add("name", "Name is required")
	case !util.IsValidSlug(base):
		verr.add("name", "Name must contain letters or digits")
	default:
		if _, err := s.queries.GetPublisherByName(ctx, name); err == nil {
			verr.add("name", "A publisher with this name already exists")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return store.Publisher{}, fmt.Errorf("checking publisher name: %w", err)
		}
	}
	if !verr.empty() {
		return store.Publisher{}, verr
	}

	// Names that differ only in case or punctuation share a base slug.
	slug, err := util.UniqueSlug(base, func(candidate string) (bool, error) {
		_, err := s.queries.GetPublisherBySlug(ctx, candidate)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return store.Publisher{}, fmt.Errorf("choosing publisher slug: %w", err)
	}

	p, err := s.queries.CreatePublisher(ctx, store.CreatePublisherParams{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return store.Publisher{}, fmt.Errorf("creating publisher: %w", err)
	}
	return p, nil
}

// UpdateDescription changes a publisher's description. The name is immutable.
func (s *PublisherService) UpdateDescription(ctx context.Context, actor auth.Identity, id int64, description string) error {
	if err := authorize(actor, auth.OpManagePublishers); err != nil {
		return err
	}
	n, err := s.queries.UpdatePublisherDescription(ctx, store.UpdatePublisherDescriptionParams{
		Description: strings.TrimSpace(description),
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("updating publisher %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("publisher %d: %w", id, ErrNotFound)
	}
	return nil
}
