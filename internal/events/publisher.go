// Package events fans dispatched workflow actions out to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ActionEvent is the message body published for each dispatched action.
type ActionEvent struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus,omitempty"`
	Outcome    string    `json:"outcome"`
	UserID     string    `json:"userId"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewActionEvent projects an action log entry into its broker message.
func NewActionEvent(entry models.ActionLog) ActionEvent {
	return ActionEvent{
		ID:         entry.ID,
		Entity:     entry.Entity,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Outcome:    entry.Outcome,
		UserID:     entry.UserID,
		RequestID:  entry.RequestID,
		OccurredAt: entry.CreatedAt,
	}
}

// RoutingKey is "<entity>.<action>.<outcome>", e.g. "task.block.succeeded".
func (e ActionEvent) RoutingKey() string {
	return fmt.Sprintf("%s.%s.%s", e.Entity, e.Action, e.Outcome)
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher writes action events to a durable queue.
type Publisher struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *zap.Logger
}

// Dial connects to the broker at url and declares queue.
func Dial(url, queue string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	p := newPublisher(ch, q.Name, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{channel: ch, queue: queue, logger: logger}
}

// Publish sends one event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event ActionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode action event: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.RoutingKey(),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.RoutingKey(), err)
	}
	p.logger.Debug("action event published", zap.String("event_id", event.ID), zap.String("type", event.RoutingKey()))
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
