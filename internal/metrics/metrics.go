// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for approvals, notification
// delivery and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newsdesk"

// Outcome label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Metrics holds the application's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	approvals     *prometheus.CounterVec
	emails        *prometheus.CounterVec
	emailRcpts    prometheus.Counter
	socialPosts   *prometheus.CounterVec
	brokerPublish *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_approvals_total",
			Help:      "Approval requests by result (approved, already_approved).",
		}, []string{"result"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_emails_total",
			Help:      "Approval notification emails by result.",
		}, []string{"result"}),
		emailRcpts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_email_recipients_total",
			Help:      "Recipients addressed by approval notification emails.",
		}),
		socialPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_social_posts_total",
			Help:      "Social announcements by result.",
		}, []string{"result"}),
		brokerPublish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_broker_publishes_total",
			Help:      "Approval events published to the message broker by result.",
		}, []string{"result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notification_queue_depth",
			Help:      "Approval events waiting for a dispatcher worker.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.approvals,
		m.emails,
		m.emailRcpts,
		m.socialPosts,
		m.brokerPublish,
		m.queueDepth,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ApprovalRecorded counts an approval request. approved is false for no-ops.
func (m *Metrics) ApprovalRecorded(approved bool) {
	if m == nil {
		return
	}
	if approved {
		m.approvals.WithLabelValues("approved").Inc()
	} else {
		m.approvals.WithLabelValues("already_approved").Inc()
	}
}

// EmailSent counts one notification email and its recipients.
func (m *Metrics) EmailSent(result string, recipients int) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.emailRcpts.Add(float64(recipients))
	}
}

// SocialPosted counts one social announcement attempt.
func (m *Metrics) SocialPosted(result string) {
	if m == nil {
		return
	}
	m.socialPosts.WithLabelValues(result).Inc()
}

// BrokerPublished counts one broker publish attempt.
func (m *Metrics) BrokerPublished(result string) {
	if m == nil {
		return
	}
	m.brokerPublish.WithLabelValues(result).Inc()
}

// QueueDepth sets the dispatcher backlog gauge.
func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Middleware records request counts and latency, labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
