// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"database/sql"
	"strings"

	"github.com/olegiv/newsdesk/internal/store"
)

// RecipientSource looks up subscriber addresses. *store.Queries satisfies it.
type RecipientSource interface {
	ListApprovalRecipients(ctx context.Context, arg store.ListApprovalRecipientsParams) ([]string, error)
}

// Recipients returns the deduplicated addresses of everyone subscribed to the
// event's publisher or author.
func Recipients(ctx context.Context, src RecipientSource, ev ApprovalEvent) ([]string, error) {
	emails, err := src.ListApprovalRecipients(ctx, store.ListApprovalRecipientsParams{
		PublisherID: sql.NullInt64{Int64: ev.PublisherID, Valid: ev.HasPublisher()},
		AuthorID:    ev.AuthorID,
	})
	if err != nil {
		return nil, err
	}
	return dedupeEmails(emails), nil
}

// dedupeEmails drops blanks and case-insensitive duplicates, keeping the
// first spelling seen.
func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
