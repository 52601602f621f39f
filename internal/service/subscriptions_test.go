// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/testutil"
)

func TestSubscriptionService_Publishers(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	svc := NewSubscriptionService(n.db, NewEventService(n.db))
	reader := n.readerID()

	require.NoError(t, svc.SubscribePublisher(ctx, reader, n.dailyPost.ID))
	require.NoError(t, svc.SubscribePublisher(ctx, reader, n.dailyPost.ID), "subscribing twice is a no-op")
	require.NoError(t, svc.SubscribePublisher(ctx, reader, n.techWeekly.ID))

	subs, err := svc.List(ctx, reader)
	require.NoError(t, err)
	require.Len(t, subs.Publishers, 2)
	assert.Equal(t, "The Daily Post", subs.Publishers[0].Name)

	require.NoError(t, svc.UnsubscribePublisher(ctx, reader, n.dailyPost.ID))
	subs, err = svc.List(ctx, reader)
	require.NoError(t, err)
	require.Len(t, subs.Publishers, 1)
	assert.Equal(t, "Tech Weekly", subs.Publishers[0].Name)

	assert.ErrorIs(t, svc.SubscribePublisher(ctx, reader, 9999), ErrNotFound)
	assert.ErrorIs(t, svc.SubscribePublisher(ctx, auth.Anonymous, n.dailyPost.ID), ErrUnauthenticated)
}

func TestSubscriptionService_Journalists(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	svc := NewSubscriptionService(n.db, nil)

	require.NoError(t, svc.SubscribeJournalist(ctx, n.readerID(), n.journalist.ID))

	subs, err := svc.List(ctx, n.readerID())
	require.NoError(t, err)
	assert.Equal(t, []JournalistRef{{ID: n.journalist.ID, Username: "jo"}}, subs.Journalists)
	assert.NotNil(t, subs.Publishers)

	assert.ErrorIs(t, svc.SubscribeJournalist(ctx, n.journalistID(), n.journalist.ID), ErrSelfSubscription)
	assert.ErrorIs(t, svc.SubscribeJournalist(ctx, n.readerID(), n.editor.ID), ErrNotFound, "target must be a journalist")
	assert.ErrorIs(t, svc.SubscribeJournalist(ctx, n.readerID(), 9999), ErrNotFound)

	require.NoError(t, svc.UnsubscribeJournalist(ctx, n.readerID(), n.journalist.ID))
	subs, err = svc.List(ctx, n.readerID())
	require.NoError(t, err)
	assert.Empty(t, subs.Journalists)
}

func TestSubscriptionService_FeedFollowsSubscriptions(t *testing.T) {
	n := newNewsroom(t)
	ctx := context.Background()
	subs := NewSubscriptionService(n.db, nil)
	feed := NewFeedService(n.db)

	testutil.CreateArticle(t, n.db, testutil.ArticleOpts{Title: "independent", AuthorID: n.journalist.ID, Approved: true})

	before, err := feed.SubscribedFeed(ctx, n.reader.ID)
	require.NoError(t, err)
	assert.Empty(t, before)

	require.NoError(t, subs.SubscribeJournalist(ctx, n.readerID(), n.journalist.ID))

	after, err := feed.SubscribedFeed(ctx, n.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"independent"}, titles(after))
}
