// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/model"
)

// EventRecorder persists audit events. service.EventService satisfies it.
type EventRecorder interface {
	LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error
}

// Config holds dispatcher configuration.
type Config struct {
	Workers         int           // concurrent delivery workers
	QueueSize       int           // buffered events before inline fallback
	From            string        // sender address
	DeliveryTimeout time.Duration // upper bound for one Notify call
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		QueueSize:       100,
		From:            "noreply@newsapp.com",
		DeliveryTimeout: 30 * time.Second,
	}
}

// Dependencies are the collaborators of a Dispatcher. Only Recipients and
// Mailer are required.
type Dependencies struct {
	Recipients RecipientSource
	Mailer     Mailer
	Social     SocialPoster
	Broker     EventPublisher
	Events     EventRecorder
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Report summarises one Notify call.
type Report struct {
	Recipients   []string
	EmailSent    bool
	SocialPosted bool
	Published    bool
}

// Dispatcher delivers approval notifications. Events handed to
// ArticleApproved are processed by a worker pool; when the pool is not
// running or its queue is full they are delivered inline.
type Dispatcher struct {
	deps    Dependencies
	cfg     Config
	logger  *slog.Logger
	queue   chan ApprovalEvent
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// NewDispatcher creates a dispatcher. Call Start to enable asynchronous delivery.
func NewDispatcher(deps Dependencies, cfg Config) *Dispatcher {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.From == "" {
		cfg.From = defaults.From
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaults.DeliveryTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Social == nil {
		deps.Social = NopSocialPoster{}
	}

	return &Dispatcher{
		deps:   deps,
		cfg:    cfg,
		logger: deps.Logger,
		queue:  make(chan ApprovalEvent, cfg.QueueSize),
	}
}

// Start starts the worker goroutines. Cancelling ctx stops the pool the
// same way Stop does: queued events are still delivered and later events go
// inline.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.done = make(chan struct{})
	done := d.done
	d.mu.Unlock()

	d.logger.Info("starting notification dispatcher", "workers", d.cfg.Workers, "queue_size", d.cfg.QueueSize)

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, done, i)
	}
}

// Stop stops accepting queued events, lets workers drain the queue and waits
// for them to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	wasRunning := d.running
	d.running = false
	done := d.done
	d.mu.Unlock()

	if wasRunning {
		d.logger.Info("stopping notification dispatcher")
		close(done)
	}
	d.wg.Wait()
	if wasRunning {
		d.logger.Info("notification dispatcher stopped")
	}
}

// halt switches ArticleApproved to inline delivery. It reports whether the
// dispatcher was running.
func (d *Dispatcher) halt() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	wasRunning := d.running
	d.running = false
	return wasRunning
}

func (d *Dispatcher) worker(ctx context.Context, done <-chan struct{}, id int) {
	defer d.wg.Done()
	d.logger.Debug("notification worker started", "worker_id", id)

	// Deliveries carry their own timeout and outlive the pool context.
	deliverCtx := context.WithoutCancel(ctx)
	for {
		select {
		case ev := <-d.queue:
			d.deps.Metrics.QueueDepth(len(d.queue))
			d.Notify(deliverCtx, ev)
		case <-done:
			d.drain(deliverCtx)
			d.logger.Debug("notification worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			if d.halt() {
				d.logger.Warn("notification dispatcher context cancelled, delivering inline")
			}
			d.drain(deliverCtx)
			d.logger.Debug("notification worker context cancelled", "worker_id", id)
			return
		}
	}
}

// drain delivers whatever is still queued at shutdown.
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.Notify(ctx, ev)
		default:
			d.deps.Metrics.QueueDepth(0)
			return
		}
	}
}

// ArticleApproved hands ev to the worker pool, or delivers it inline when
// the pool is stopped or saturated. It never fails.
func (d *Dispatcher) ArticleApproved(ctx context.Context, ev ApprovalEvent) {
	d.mu.RLock()
	if d.running {
		select {
		case d.queue <- ev:
			d.mu.RUnlock()
			d.deps.Metrics.QueueDepth(len(d.queue))
			d.logger.Debug("approval event queued", "event_id", ev.ID, "article_id", ev.ArticleID)
			return
		default:
			d.logger.Warn("notification queue full, delivering inline", "article_id", ev.ArticleID)
		}
	}
	d.mu.RUnlock()

	d.Notify(context.WithoutCancel(ctx), ev)
}

// Notify delivers ev synchronously: one email to all subscribers, a social
// post and, if configured, a broker message. Failures are logged, recorded
// and counted but never returned.
func (d *Dispatcher) Notify(ctx context.Context, ev ApprovalEvent) Report {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.DeliveryTimeout)
	defer cancel()

	var report Report
	log := d.logger.With("event_id", ev.ID, "article_id", ev.ArticleID)

	recipients, err := Recipients(ctx, d.deps.Recipients, ev)
	if err != nil {
		log.Error("failed to load notification recipients", "error", err)
		d.record(ctx, ev, model.EventLevelError, "Recipient lookup failed", map[string]any{"error": err.Error()})
		d.deps.Metrics.EmailSent(metrics.ResultFailure, 0)
	} else {
		report.Recipients = recipients
		report.EmailSent = d.sendEmail(ctx, log, ev, recipients)
	}

	report.SocialPosted = d.postSocial(ctx, log, ev)
	report.Published = d.publish(ctx, log, ev)

	return report
}

func (d *Dispatcher) sendEmail(ctx context.Context, log *slog.Logger, ev ApprovalEvent, recipients []string) bool {
	if len(recipients) == 0 {
		log.Debug("no subscribers, skipping approval email")
		d.deps.Metrics.EmailSent(metrics.ResultSkipped, 0)
		return false
	}

	email := BuildEmail(ev, d.cfg.From, recipients)
	if err := d.deps.Mailer.Send(ctx, email); err != nil {
		log.Error("approval email failed", "error", err, "recipients", len(recipients))
		d.record(ctx, ev, model.EventLevelError, "Approval email failed", map[string]any{
			"error":      err.Error(),
			"recipients": len(recipients),
		})
		d.deps.Metrics.EmailSent(metrics.ResultFailure, len(recipients))
		return false
	}

	log.Info("sent approval email", "title", ev.Title, "recipients", len(recipients))
	d.record(ctx, ev, model.EventLevelInfo, "Approval email sent", map[string]any{"recipients": len(recipients)})
	d.deps.Metrics.EmailSent(metrics.ResultSuccess, len(recipients))
	return true
}

func (d *Dispatcher) postSocial(ctx context.Context, log *slog.Logger, ev ApprovalEvent) bool {
	if _, disabled := d.deps.Social.(NopSocialPoster); disabled {
		d.deps.Metrics.SocialPosted(metrics.ResultSkipped)
		return false
	}
	if err := d.deps.Social.Post(ctx, SocialText(ev)); err != nil {
		log.Warn("social post failed", "error", err)
		d.deps.Metrics.SocialPosted(metrics.ResultFailure)
		return false
	}
	d.deps.Metrics.SocialPosted(metrics.ResultSuccess)
	return true
}

func (d *Dispatcher) publish(ctx context.Context, log *slog.Logger, ev ApprovalEvent) bool {
	if d.deps.Broker == nil {
		return false
	}
	if err := d.deps.Broker.PublishApproval(ctx, ev); err != nil {
		log.Warn("broker publish failed", "error", err)
		d.deps.Metrics.BrokerPublished(metrics.ResultFailure)
		return false
	}
	d.deps.Metrics.BrokerPublished(metrics.ResultSuccess)
	return true
}

func (d *Dispatcher) record(ctx context.Context, ev ApprovalEvent, level, message string, metadata map[string]any) {
	if d.deps.Events == nil {
		return
	}
	metadata["article_id"] = ev.ArticleID
	metadata["event_id"] = ev.ID
	_ = d.deps.Events.LogEvent(ctx, level, model.EventCategoryNotification, message, nil, "", metadata)
}
