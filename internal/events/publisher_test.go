package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
)

type channelStub struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (c *channelStub) PublishWithContext(_ context.Context, _ string, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *channelStub) Close() error {
	c.closed = true
	return nil
}

func TestPublishWritesPersistentJSON(t *testing.T) {
	ch := &channelStub{}
	p := newPublisher(ch, "changedesk.actions", nil)
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	event := NewActionEvent(models.ActionLog{
		ID: "log-1", Entity: "task", EntityID: "t-1", Action: "block",
		FromStatus: "InProgress", ToStatus: "Blocked", Outcome: models.OutcomeSucceeded,
		UserID: "u-1", CreatedAt: at,
	})
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "changedesk.actions", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "task.block.succeeded", msg.Type)
	assert.Equal(t, "log-1", msg.MessageId)

	var decoded ActionEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "Blocked", decoded.ToStatus)
	assert.True(t, at.Equal(decoded.OccurredAt))
}

func TestPublishWrapsBrokerErrors(t *testing.T) {
	p := newPublisher(&channelStub{err: errors.New("channel closed")}, "q", nil)
	err := p.Publish(context.Background(), ActionEvent{Entity: "project", Action: "hold", Outcome: "failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project.hold.failed")
}

func TestCloseWithoutConnection(t *testing.T) {
	ch := &channelStub{}
	p := newPublisher(ch, "q", nil)
	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
