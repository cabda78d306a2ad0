package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/events"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/repository"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/jobs"
	"github.com/noah-isme/changedesk-api/pkg/middleware/requestid"
)

type actionLogStore interface {
	Create(ctx context.Context, entry *models.ActionLog) error
	List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.ActionEvent) error
}

type auditQueue interface {
	Enqueue(job jobs.Job[models.ActionLog]) error
}

var errActionLogDisabled = appErrors.Clone(appErrors.ErrNotFound, "action log persistence is disabled")

// AuditService records dispatch outcomes asynchronously. Entries are queued
// without blocking the request and delivered to the database and the broker
// by background workers.
type AuditService struct {
	store     actionLogStore
	publisher eventPublisher
	queue     auditQueue
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// AuditServiceOption customises the service.
type AuditServiceOption func(*AuditService)

// WithActionLogStore persists entries.
func WithActionLogStore(store actionLogStore) AuditServiceOption {
	return func(s *AuditService) {
		s.store = store
	}
}

// WithEventPublisher fans entries out to the broker.
func WithEventPublisher(p eventPublisher) AuditServiceOption {
	return func(s *AuditService) {
		s.publisher = p
	}
}

// WithAuditMetrics counts dropped entries.
func WithAuditMetrics(m *MetricsService) AuditServiceOption {
	return func(s *AuditService) {
		s.metrics = m
	}
}

// NewAuditService constructs the service. Entries are dropped until NewQueue
// or Attach provides a queue.
func NewAuditService(logger *zap.Logger, opts ...AuditServiceOption) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewQueue builds the delivery queue backed by this service's sinks.
func (s *AuditService) NewQueue(cfg jobs.QueueConfig) *jobs.Queue[models.ActionLog] {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	q := jobs.NewQueue[models.ActionLog]("action-log", s.Deliver, cfg)
	s.queue = q
	return q
}

// Attach sets the queue entries are pushed onto.
func (s *AuditService) Attach(q auditQueue) {
	s.queue = q
}

// RecordDispatch implements dispatch.Recorder.
func (s *AuditService) RecordDispatch(ctx context.Context, outcome dispatch.Outcome) {
	if s == nil || s.queue == nil {
		return
	}
	entry := s.entry(ctx, outcome)
	if err := s.queue.Enqueue(jobs.Job[models.ActionLog]{ID: entry.ID, Payload: entry}); err != nil {
		s.metrics.RecordAuditDropped()
		s.logger.Warn("action log dropped",
			zap.String("entity", entry.Entity),
			zap.String("entity_id", entry.EntityID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// Deliver writes one entry to every configured sink. Persistence is
// idempotent on the entry id, so a retried job is safe.
func (s *AuditService) Deliver(ctx context.Context, job jobs.Job[models.ActionLog]) error {
	entry := job.Payload
	if s.store != nil {
		if err := s.store.Create(ctx, &entry); err != nil {
			return err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewActionEvent(entry)); err != nil {
			return err
		}
	}
	return nil
}

// List returns persisted entries, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, error) {
	if s.store == nil {
		return nil, errActionLogDisabled
	}
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list action log")
	}
	if entries == nil {
		entries = []models.ActionLog{}
	}
	return entries, nil
}

func (s *AuditService) entry(ctx context.Context, outcome dispatch.Outcome) models.ActionLog {
	entry := models.ActionLog{
		ID:         uuid.NewString(),
		Entity:     outcome.Entity,
		EntityID:   outcome.EntityID,
		Action:     outcome.Action,
		FromStatus: outcome.FromStatus,
		ToStatus:   outcome.ToStatus,
		Outcome:    outcome.Result,
		RequestID:  requestid.FromContext(ctx),
		DurationMS: outcome.Duration.Milliseconds(),
		CreatedAt:  s.now().UTC(),
	}
	if outcome.Session != nil {
		entry.SessionID = outcome.Session.ID
		entry.UserID = outcome.Session.UserID()
	}
	if outcome.Err != nil {
		msg := appErrors.Message(outcome.Err)
		entry.ErrorMessage = &msg
	}
	return entry
}
