// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SocialPoster publishes a short public announcement.
type SocialPoster interface {
	Post(ctx context.Context, text string) error
}

// HTTPSocialPoster posts {"text": ...} to a bearer-token protected endpoint,
// the shape of the X (Twitter) v2 tweets API.
type HTTPSocialPoster struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPSocialPoster creates a poster with the given request timeout.
func NewHTTPSocialPoster(endpoint, token string, timeout time.Duration) *HTTPSocialPoster {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSocialPoster{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

type socialPayload struct {
	Text string `json:"text"`
}

// Post implements SocialPoster. Any non-2xx response is an error.
func (p *HTTPSocialPoster) Post(ctx context.Context, text string) error {
	if p.endpoint == "" || p.token == "" {
		return fmt.Errorf("social poster misconfigured")
	}

	body, err := json.Marshal(socialPayload{Text: text})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("social api error: %s", resp.Status)
	}
	return nil
}

// NopSocialPoster accepts every post and does nothing.
type NopSocialPoster struct{}

// Post implements SocialPoster.
func (NopSocialPoster) Post(context.Context, string) error { return nil }
