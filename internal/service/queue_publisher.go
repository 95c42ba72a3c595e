// Package service contains the broker-facing publisher used by the
// HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/queue"
)

// Publisher sends notification events to the broker.  Publishing is
// best-effort: callers log and continue on error, a lost notification
// never fails the request that produced it.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the given AMQP URL.  An empty
// URL yields a disabled publisher whose Publish is a no-op.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish marshals the event and sends it to the durable notification
// queue.  A fresh connection per call keeps the handler path free of
// shared channel state.
func (p *Publisher) Publish(ctx context.Context, ev queue.NotificationEvent) error {
	if p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.NotificationQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.String("kind", ev.Kind), zap.Error(err))
		return err
	}
	return nil
}
