package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/events"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/repository"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/jobs"
	"github.com/noah-isme/changedesk-api/pkg/middleware/requestid"
)

type queueStub struct {
	jobs []jobs.Job[models.ActionLog]
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job[models.ActionLog]) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type publisherStub struct {
	events []events.ActionEvent
	err    error
}

func (p *publisherStub) Publish(_ context.Context, event events.ActionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestAuditRecordDispatchBuildsEntry(t *testing.T) {
	q := &queueStub{}
	svc := NewAuditService(nil)
	svc.Attach(q)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	ctx := requestid.WithValue(context.Background(), "req-9")
	svc.RecordDispatch(ctx, dispatch.Outcome{
		Session:    testSession,
		Entity:     dispatch.EntityChangeRequest,
		EntityID:   "cr-1",
		Action:     "deny",
		FromStatus: "UnderReview",
		Result:     models.OutcomeInvalid,
		Err:        appErrors.Clone(appErrors.ErrValidation, "Denial reason is required"),
		Duration:   1500 * time.Microsecond,
	})

	require.Len(t, q.jobs, 1)
	entry := q.jobs[0].Payload
	assert.Equal(t, q.jobs[0].ID, entry.ID)
	assert.Equal(t, "s-1", entry.SessionID)
	assert.Equal(t, "u-1", entry.UserID)
	assert.Equal(t, "req-9", entry.RequestID)
	assert.Equal(t, int64(1), entry.DurationMS)
	require.NotNil(t, entry.ErrorMessage)
	assert.Equal(t, "Denial reason is required", *entry.ErrorMessage)
}

func TestAuditDropsWhenQueueFull(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewAuditService(nil, WithAuditMetrics(metrics))
	svc.Attach(&queueStub{err: errors.New("queue action-log is full")})

	svc.RecordDispatch(context.Background(), dispatch.Outcome{Entity: dispatch.EntityTask, Action: "start"})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.auditDropped))
}

func TestAuditDeliverWritesEverySink(t *testing.T) {
	store := &actionLogStoreStub{}
	pub := &publisherStub{}
	svc := NewAuditService(nil, WithActionLogStore(store), WithEventPublisher(pub))

	entry := models.ActionLog{ID: "log-1", Entity: "task", Action: "block", Outcome: models.OutcomeSucceeded}
	require.NoError(t, svc.Deliver(context.Background(), jobs.Job[models.ActionLog]{ID: "log-1", Payload: entry}))
	require.Len(t, store.created, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "task.block.succeeded", pub.events[0].RoutingKey())

	pub.err = errors.New("broker down")
	err := svc.Deliver(context.Background(), jobs.Job[models.ActionLog]{ID: "log-2", Payload: entry})
	assert.Error(t, err, "failure is handed back to the queue for retry")
}

func TestAuditQueueDeliversInBackground(t *testing.T) {
	store := &actionLogStoreStub{}
	svc := NewAuditService(nil, WithActionLogStore(store))
	q := svc.NewQueue(jobs.QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())
	defer q.Stop()

	svc.RecordDispatch(context.Background(), dispatch.Outcome{Session: testSession, Entity: "project", EntityID: "p-1", Action: "hold", Result: models.OutcomeSucceeded})

	require.Eventually(t, func() bool {
		entries, err := svc.List(context.Background(), repository.ActionLogFilter{})
		return err == nil && len(entries) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAuditListWithoutStore(t *testing.T) {
	svc := NewAuditService(nil)
	_, err := svc.List(context.Background(), repository.ActionLogFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
