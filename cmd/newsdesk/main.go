// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/newsdesk/internal/config"
	"github.com/olegiv/newsdesk/internal/handler"
	"github.com/olegiv/newsdesk/internal/logging"
	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/render"
	"github.com/olegiv/newsdesk/internal/scheduler"
	"github.com/olegiv/newsdesk/internal/service"
	"github.com/olegiv/newsdesk/internal/session"
	"github.com/olegiv/newsdesk/internal/store"
	"github.com/olegiv/newsdesk/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "newsdesk - editorial news publishing service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SESSION_SECRET            Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_DB_PATH                   SQLite database path (default: ./data/newsdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SERVER_PORT               Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_ENV                       Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_BASE_URL                  Public URL used in notification links\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SMTP_HOST                 SMTP relay; emails are only logged when empty\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SOCIAL_ENABLED            Post approvals to the social API (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_AMQP_URL                  RabbitMQ URL for approval events (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_REVIEW_REMINDER_SCHEDULE  Cron schedule of the editor digest (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_DO_SEED                   Seed demo users and publishers (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("newsdesk %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	buildInfo := handler.BuildInfo{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	appMetrics := metrics.New()
	eventService := service.NewEventService(db)

	// Notification channels
	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if cfg.MailEnabled() {
		smtpMailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			TLSPolicy: cfg.SMTPTLSPolicy,
		})
		if err != nil {
			return fmt.Errorf("initializing mailer: %w", err)
		}
		mailer = smtpMailer
		slog.Info("smtp mailer initialized", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		slog.Warn("smtp not configured, notification emails are only logged")
	}

	var social notify.SocialPoster = notify.NopSocialPoster{}
	if cfg.SocialConfigured() {
		social = notify.NewHTTPSocialPoster(cfg.SocialEndpoint, cfg.SocialToken, cfg.SocialTimeout)
		slog.Info("social posting enabled", "endpoint", cfg.SocialEndpoint)
	}

	var broker notify.EventPublisher
	if cfg.BrokerEnabled() {
		publisher, err := notify.NewRabbitMQPublisher(notify.BrokerConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
		}, logger)
		if err != nil {
			// The broker is optional; approvals still notify by email.
			slog.Error("rabbitmq unavailable, approval events will not be published", "error", err)
		} else {
			broker = publisher
			defer func() { _ = publisher.Close() }()
		}
	}

	notifyCfg := notify.DefaultConfig()
	notifyCfg.Workers = cfg.NotifyWorkers
	notifyCfg.QueueSize = cfg.NotifyQueueSize
	notifyCfg.From = cfg.MailFrom
	dispatcher := notify.NewDispatcher(notify.Dependencies{
		Recipients: store.New(db),
		Mailer:     mailer,
		Social:     social,
		Broker:     broker,
		Events:     eventService,
		Metrics:    appMetrics,
		Logger:     logger,
	}, notifyCfg)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Services
	userService := service.NewUserService(db, logger)
	approvalService := service.NewApprovalService(db, service.ApprovalDeps{
		Notifier: dispatcher,
		Events:   eventService,
		Metrics:  appMetrics,
		BaseURL:  cfg.BaseURL,
		Logger:   logger,
	})
	services := handler.Services{
		Users:         userService,
		Articles:      service.NewArticleService(db, eventService, logger),
		Feed:          service.NewFeedService(db),
		Publishers:    service.NewPublisherService(db),
		Subscriptions: service.NewSubscriptionService(db, eventService),
		Approval:      approvalService,
		Events:        eventService,
	}

	lpCfg := middleware.DefaultLoginProtectionConfig()
	lpCfg.Audit = eventService
	loginProtection := middleware.NewLoginProtection(lpCfg)
	defer loginProtection.Stop()
	slog.Info("login protection initialized",
		"ip_rate_limit", lpCfg.IPRateLimit,
		"max_failed_attempts", lpCfg.MaxFailedAttempts,
		"lockout_duration", lpCfg.LockoutDuration,
	)

	apiRateLimit := middleware.NewAPIRateLimit(10, 20)

	// Background jobs
	sched := scheduler.New(logger)
	if err := sched.Register(scheduler.JobEventRetention, "Delete old events", "0 3 * * *",
		scheduler.EventRetentionJob(eventService, cfg.EventRetention, logger)); err != nil {
		return fmt.Errorf("registering event retention job: %w", err)
	}
	if err := sched.Register(scheduler.JobRateLimitPrune, "Drop idle API rate limiters", "@every 10m",
		scheduler.RateLimitPruneJob(apiRateLimit, 10000)); err != nil {
		return fmt.Errorf("registering rate limit prune job: %w", err)
	}
	if cfg.ReviewReminderEnabled() {
		reminder := scheduler.ReviewReminder{
			Pending: approvalService,
			Editors: userService,
			Mailer:  mailer,
			From:    cfg.MailFrom,
			BaseURL: cfg.BaseURL,
			Logger:  logger,
		}
		if err := sched.Register(scheduler.JobReviewReminder, "Email editors about the review queue",
			cfg.ReviewReminderSchedule, reminder.Job()); err != nil {
			return fmt.Errorf("registering review reminder: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		DB:              db,
		Renderer:        renderer,
		SessionManager:  sessionManager,
		Services:        services,
		Metrics:         appMetrics,
		LoginProtection: loginProtection,
		APIRateLimit:    apiRateLimit,
		CSRF:            middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort),
		IsDevelopment:   cfg.IsDevelopment(),
		Build:           buildInfo,
		RequestTimeout:  handler.DefaultRequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
