// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/store"
	"github.com/olegiv/newsdesk/internal/testutil"
)

// recordingNotifier collects approval events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.ApprovalEvent
}

func (n *recordingNotifier) ArticleApproved(_ context.Context, ev notify.ApprovalEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []notify.ApprovalEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.ApprovalEvent(nil), n.events...)
}

// newsroom is a fixture with one user per role and two publishers.
type newsroom struct {
	db         *sql.DB
	editor     store.User
	journalist store.User
	reader     store.User
	dailyPost  store.Publisher
	techWeekly store.Publisher
}

func newNewsroom(t *testing.T) *newsroom {
	t.Helper()
	db := testutil.TestDB(t)
	return &newsroom{
		db:         db,
		editor:     testutil.CreateUser(t, db, "ed", "ed@example.com", auth.GroupEditor),
		journalist: testutil.CreateUser(t, db, "jo", "jo@example.com", auth.GroupJournalist),
		reader:     testutil.CreateUser(t, db, "rita", "rita@example.com", auth.GroupReader),
		dailyPost:  testutil.CreatePublisher(t, db, "The Daily Post", "the-daily-post"),
		techWeekly: testutil.CreatePublisher(t, db, "Tech Weekly", "tech-weekly"),
	}
}

func identityOf(u store.User, groups ...string) auth.Identity {
	return auth.NewIdentity(u.ID, u.Username, u.Email, groups...)
}

func (n *newsroom) editorID() auth.Identity {
	return identityOf(n.editor, auth.GroupEditor)
}

func (n *newsroom) journalistID() auth.Identity {
	return identityOf(n.journalist, auth.GroupJournalist)
}

func (n *newsroom) readerID() auth.Identity {
	return identityOf(n.reader, auth.GroupReader)
}

func titles(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}
