// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher forwards approval events to other systems.
type EventPublisher interface {
	PublishApproval(ctx context.Context, ev ApprovalEvent) error
	Close() error
}

// BrokerConfig configures the RabbitMQ publisher.
type BrokerConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes approval events to a durable direct exchange.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// NewRabbitMQPublisher dials the broker and declares the exchange.
func NewRabbitMQPublisher(cfg BrokerConfig, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("connected to rabbitmq", "exchange", cfg.Exchange, "routing_key", cfg.RoutingKey)

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// approvalMessage is the wire format of a published approval.
type approvalMessage struct {
	Action    string        `json:"action"`
	Event     ApprovalEvent `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
}

// PublishApproval implements EventPublisher.
func (r *RabbitMQPublisher) PublishApproval(ctx context.Context, ev ApprovalEvent) error {
	body, err := json.Marshal(approvalMessage{
		Action:    "approved",
		Event:     ev,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    ev.ID,
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published approval event", "event_id", ev.ID, "article_id", ev.ArticleID)
	return nil
}

// Close closes the channel and connection.
func (r *RabbitMQPublisher) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
