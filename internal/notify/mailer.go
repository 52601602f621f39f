// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// Mailer delivers an Email to all of its recipients in one send.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string // mandatory, opportunistic or none
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
}

// NewSMTPMailer creates a mailer for cfg. No connection is made until Send.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

func tlsPolicy(s string) mail.TLSPolicy {
	switch strings.ToLower(s) {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// Send implements Mailer. Recipients are addressed as Bcc so subscribers do
// not see each other.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg, err := newMailMsg(email)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func newMailMsg(email Email) (*mail.Msg, error) {
	if len(email.Recipients) == 0 {
		return nil, errors.New("email has no recipients")
	}

	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", email.From, err)
	}
	if err := msg.Bcc(email.Recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)
	if email.MessageID != "" {
		msg.SetGenHeader(mail.HeaderMessageID, email.MessageID)
	}
	return msg, nil
}

// LogMailer writes emails to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email (not sent, no SMTP relay configured)",
		"from", email.From,
		"recipients", len(email.Recipients),
		"subject", email.Subject,
		"body", email.Body,
	)
	return nil
}
