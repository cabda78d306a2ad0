package models

import "time"

// Action log outcomes.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeInvalid       = "invalid"
	OutcomeNotAllowed    = "not_allowed"
	OutcomeFailed        = "failed"
	OutcomeRefreshFailed = "refresh_failed"
)

// ActionLog records one dispatched workflow action.
type ActionLog struct {
	ID           string    `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"sessionId"`
	UserID       string    `db:"user_id" json:"userId"`
	Entity       string    `db:"entity" json:"entity"`
	EntityID     string    `db:"entity_id" json:"entityId"`
	Action       string    `db:"action" json:"action"`
	FromStatus   string    `db:"from_status" json:"fromStatus"`
	ToStatus     string    `db:"to_status" json:"toStatus,omitempty"`
	Outcome      string    `db:"outcome" json:"outcome"`
	ErrorMessage *string   `db:"error_message" json:"errorMessage,omitempty"`
	RequestID    string    `db:"request_id" json:"requestId,omitempty"`
	DurationMS   int64     `db:"duration_ms" json:"durationMs"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
