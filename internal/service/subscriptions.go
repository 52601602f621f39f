// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/store"
)

// Subscriptions lists what a user follows.
type Subscriptions struct {
	Publishers  []store.Publisher `json:"publishers"`
	Journalists []JournalistRef   `json:"journalists"`
}

// JournalistRef is the public view of a journalist.
type JournalistRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SubscriptionService manages reader subscriptions to publishers and
// journalists.
type SubscriptionService struct {
	queries *store.Queries
	events  *EventService
}

// NewSubscriptionService creates a new SubscriptionService. events may be nil.
func NewSubscriptionService(db *sql.DB, events *EventService) *SubscriptionService {
	return &SubscriptionService{queries: store.New(db), events: events}
}

// List returns the subscriptions of actor.
func (s *SubscriptionService) List(ctx context.Context, actor auth.Identity) (Subscriptions, error) {
	if err := authorize(actor, auth.OpManageSubscriptions); err != nil {
		return Subscriptions{}, err
	}

	publishers, err := s.queries.ListSubscribedPublishers(ctx, actor.UserID)
	if err != nil {
		return Subscriptions{}, fmt.Errorf("listing publisher subscriptions: %w", err)
	}
	journalists, err := s.queries.ListSubscribedJournalists(ctx, actor.UserID)
	if err != nil {
		return Subscriptions{}, fmt.Errorf("listing journalist subscriptions: %w", err)
	}

	subs := Subscriptions{
		Publishers:  make([]store.Publisher, 0, len(publishers)),
		Journalists: make([]JournalistRef, 0, len(journalists)),
	}
	subs.Publishers = append(subs.Publishers, publishers...)
	for _, j := range journalists {
		subs.Journalists = append(subs.Journalists, JournalistRef{ID: j.ID, Username: j.Username})
	}
	return subs, nil
}

// SubscribePublisher subscribes actor to a publisher. Subscribing twice is a no-op.
func (s *SubscriptionService) SubscribePublisher(ctx context.Context, actor auth.Identity, publisherID int64) error {
	if err := s.checkPublisher(ctx, actor, publisherID); err != nil {
		return err
	}
	if err := s.queries.SubscribeToPublisher(ctx, store.PublisherSubscriptionParams{
		UserID:      actor.UserID,
		PublisherID: publisherID,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("subscribing to publisher %d: %w", publisherID, err)
	}
	s.logEvent(ctx, actor, "Subscribed to publisher", "publisher_id", publisherID)
	return nil
}

// UnsubscribePublisher removes a publisher subscription.
func (s *SubscriptionService) UnsubscribePublisher(ctx context.Context, actor auth.Identity, publisherID int64) error {
	if err := s.checkPublisher(ctx, actor, publisherID); err != nil {
		return err
	}
	if err := s.queries.UnsubscribeFromPublisher(ctx, store.PublisherSubscriptionParams{
		UserID:      actor.UserID,
		PublisherID: publisherID,
	}); err != nil {
		return fmt.Errorf("unsubscribing from publisher %d: %w", publisherID, err)
	}
	s.logEvent(ctx, actor, "Unsubscribed from publisher", "publisher_id", publisherID)
	return nil
}

// SubscribeJournalist subscribes actor to a journalist. A user cannot
// subscribe to themselves, and the target must be in the Journalist group.
func (s *SubscriptionService) SubscribeJournalist(ctx context.Context, actor auth.Identity, journalistID int64) error {
	if err := s.checkJournalist(ctx, actor, journalistID); err != nil {
		return err
	}
	if err := s.queries.SubscribeToJournalist(ctx, store.JournalistSubscriptionParams{
		SubscriberID: actor.UserID,
		JournalistID: journalistID,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("subscribing to journalist %d: %w", journalistID, err)
	}
	s.logEvent(ctx, actor, "Subscribed to journalist", "journalist_id", journalistID)
	return nil
}

// UnsubscribeJournalist removes a journalist subscription.
func (s *SubscriptionService) UnsubscribeJournalist(ctx context.Context, actor auth.Identity, journalistID int64) error {
	if err := authorize(actor, auth.OpManageSubscriptions); err != nil {
		return err
	}
	if err := s.queries.UnsubscribeFromJournalist(ctx, store.JournalistSubscriptionParams{
		SubscriberID: actor.UserID,
		JournalistID: journalistID,
	}); err != nil {
		return fmt.Errorf("unsubscribing from journalist %d: %w", journalistID, err)
	}
	s.logEvent(ctx, actor, "Unsubscribed from journalist", "journalist_id", journalistID)
	return nil
}

func (s *SubscriptionService) checkPublisher(ctx context.Context, actor auth.Identity, publisherID int64) error {
	if err := authorize(actor, auth.OpManageSubscriptions); err != nil {
		return err
	}
	if _, err := s.queries.GetPublisherByID(ctx, publisherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("publisher %d: %w", publisherID, ErrNotFound)
		}
		return fmt.Errorf("loading publisher %d: %w", publisherID, err)
	}
	return nil
}

func (s *SubscriptionService) checkJournalist(ctx context.Context, actor auth.Identity, journalistID int64) error {
	if err := authorize(actor, auth.OpManageSubscriptions); err != nil {
		return err
	}
	if journalistID == actor.UserID {
		return ErrSelfSubscription
	}

	if _, err := s.queries.GetUserByID(ctx, journalistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("journalist %d: %w", journalistID, ErrNotFound)
		}
		return fmt.Errorf("loading journalist %d: %w", journalistID, err)
	}
	groups, err := s.queries.ListUserGroupNames(ctx, journalistID)
	if err != nil {
		return fmt.Errorf("loading groups of %d: %w", journalistID, err)
	}
	for _, g := range groups {
		if g == auth.GroupJournalist {
			return nil
		}
	}
	return fmt.Errorf("user %d is not a journalist: %w", journalistID, ErrNotFound)
}

func (s *SubscriptionService) logEvent(ctx context.Context, actor auth.Identity, message, key string, id int64) {
	if s.events == nil {
		return
	}
	uid := actor.UserID
	_ = s.events.LogSubscriptionEvent(ctx, model.EventLevelInfo, message, &uid, "", map[string]any{key: id})
}
