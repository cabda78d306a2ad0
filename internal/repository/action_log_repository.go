package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/changedesk-api/internal/models"
)

const actionLogSchema = `CREATE TABLE IF NOT EXISTS action_logs (
	id            UUID PRIMARY KEY,
	session_id    TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	entity        TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	action        TEXT NOT NULL,
	from_status   TEXT NOT NULL,
	to_status     TEXT NOT NULL DEFAULT '',
	outcome       TEXT NOT NULL,
	error_message TEXT,
	request_id    TEXT NOT NULL DEFAULT '',
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_action_logs_entity ON action_logs (entity, entity_id, created_at DESC);`

// ActionLogFilter narrows action log listings.
type ActionLogFilter struct {
	Entity   string
	EntityID string
	UserID   string
	Limit    int
}

// ActionLogRepository persists dispatched action records.
type ActionLogRepository struct {
	db *sqlx.DB
}

// NewActionLogRepository constructs the repository.
func NewActionLogRepository(db *sqlx.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// EnsureSchema creates the action_logs table when missing.
func (r *ActionLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, actionLogSchema); err != nil {
		return fmt.Errorf("ensure action_logs schema: %w", err)
	}
	return nil
}

// Create inserts an action log row. Re-inserting an existing id is a no-op so
// retried deliveries do not duplicate entries.
func (r *ActionLogRepository) Create(ctx context.Context, entry *models.ActionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO action_logs
	(id, session_id, user_id, entity, entity_id, action, from_status, to_status, outcome, error_message, request_id, duration_ms, created_at)
	VALUES (:id, :session_id, :user_id, :entity, :entity_id, :action, :from_status, :to_status, :outcome, :error_message, :request_id, :duration_ms, :created_at)
	ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create action log: %w", err)
	}
	return nil
}

// List returns matching rows, newest first.
func (r *ActionLogRepository) List(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT id, session_id, user_id, entity, entity_id, action, from_status, to_status,
       outcome, error_message, request_id, duration_ms, created_at FROM action_logs`)

	conditions := make([]string, 0, 3)
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		conditions = append(conditions, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	var entries []models.ActionLog
	if err := r.db.SelectContext(ctx, &entries, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	return entries, nil
}
