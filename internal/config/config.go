// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"NEWSDESK_DB_PATH" envDefault:"./data/newsdesk.db"`
	SessionSecret string `env:"NEWSDESK_SESSION_SECRET,required"`
	ServerHost    string `env:"NEWSDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NEWSDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NEWSDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"NEWSDESK_LOG_LEVEL" envDefault:"info"`

	// BaseURL is used to build absolute article links in notifications.
	BaseURL string `env:"NEWSDESK_BASE_URL" envDefault:"http://localhost:8080"`

	// Email
	SMTPHost      string `env:"NEWSDESK_SMTP_HOST"`
	SMTPPort      int    `env:"NEWSDESK_SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"NEWSDESK_SMTP_USERNAME"`
	SMTPPassword  string `env:"NEWSDESK_SMTP_PASSWORD"`
	SMTPTLSPolicy string `env:"NEWSDESK_SMTP_TLS" envDefault:"opportunistic"` // mandatory|opportunistic|none
	MailFrom      string `env:"NEWSDESK_MAIL_FROM" envDefault:"noreply@newsapp.com"`

	// Social post
	SocialEnabled  bool          `env:"NEWSDESK_SOCIAL_ENABLED" envDefault:"false"`
	SocialEndpoint string        `env:"NEWSDESK_SOCIAL_ENDPOINT" envDefault:"https://api.x.com/2/tweets"`
	SocialToken    string        `env:"NEWSDESK_SOCIAL_TOKEN"`
	SocialTimeout  time.Duration `env:"NEWSDESK_SOCIAL_TIMEOUT" envDefault:"5s"`

	// Message broker (optional)
	AMQPURL        string `env:"NEWSDESK_AMQP_URL"`
	AMQPExchange   string `env:"NEWSDESK_AMQP_EXCHANGE" envDefault:"newsdesk.articles"`
	AMQPRoutingKey string `env:"NEWSDESK_AMQP_ROUTING_KEY" envDefault:"article.approved"`

	// Notification dispatcher
	NotifyWorkers   int `env:"NEWSDESK_NOTIFY_WORKERS" envDefault:"2"`
	NotifyQueueSize int `env:"NEWSDESK_NOTIFY_QUEUE_SIZE" envDefault:"100"`

	// Editor review reminder (empty schedule disables it)
	ReviewReminderSchedule string `env:"NEWSDESK_REVIEW_REMINDER_SCHEDULE"`

	// Events older than this are purged daily
	EventRetention time.Duration `env:"NEWSDESK_EVENT_RETENTION" envDefault:"720h"`

	DoSeed bool `env:"NEWSDESK_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if an SMTP server is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// SocialConfigured returns true if social posting is enabled and has a token.
func (c Config) SocialConfigured() bool {
	return c.SocialEnabled && c.SocialEndpoint != "" && c.SocialToken != ""
}

// BrokerEnabled returns true if an AMQP URL is configured.
func (c Config) BrokerEnabled() bool {
	return c.AMQPURL != ""
}

// ReviewReminderEnabled returns true if the editor digest has a schedule.
func (c Config) ReviewReminderEnabled() bool {
	return strings.TrimSpace(c.ReviewReminderSchedule) != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("NEWSDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("NEWSDESK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("NEWSDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("NEWSDESK_BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	switch c.SMTPTLSPolicy {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("NEWSDESK_SMTP_TLS must be mandatory, opportunistic or none, got %q", c.SMTPTLSPolicy)
	}

	if c.NotifyWorkers < 1 {
		c.NotifyWorkers = 1
	}
	if c.NotifyQueueSize < 0 {
		c.NotifyQueueSize = 0
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
