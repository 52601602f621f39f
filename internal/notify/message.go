// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"fmt"

	"github.com/olegiv/newsdesk/internal/model"
)

// ExcerptLength is the number of content characters quoted in emails.
const ExcerptLength = 200

// Email is a single outbound message addressed to every recipient at once.
type Email struct {
	MessageID  string
	From       string
	Recipients []string
	Subject    string
	Body       string
}

// EmailSubject returns the subject line for an approval email.
func EmailSubject(ev ApprovalEvent) string {
	return "New Approved Article: " + ev.Title
}

// EmailBody returns the plain-text body for an approval email. The ellipsis
// is always appended, even for short content.
func EmailBody(ev ApprovalEvent) string {
	return fmt.Sprintf("Read the latest article by %s at %s\n\n%s...",
		ev.AuthorUsername, ev.ArticleURL, model.Excerpt(ev.Content, ExcerptLength))
}

// SocialText returns the announcement posted to the social API.
func SocialText(ev ApprovalEvent) string {
	return fmt.Sprintf("Article Approved: '%s' by @%s! #NewsApp #Approved", ev.Title, ev.AuthorUsername)
}

// BuildEmail assembles the approval email for recipients.
func BuildEmail(ev ApprovalEvent, from string, recipients []string) Email {
	return Email{
		MessageID:  fmt.Sprintf("<%s@newsdesk>", ev.ID),
		From:       from,
		Recipients: recipients,
		Subject:    EmailSubject(ev),
		Body:       EmailBody(ev),
	}
}
