package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
)

var actionLogColumns = []string{"id", "session_id", "user_id", "entity", "entity_id", "action", "from_status", "to_status", "outcome", "error_message", "request_id", "duration_ms", "created_at"}

func newActionLogRepoMock(t *testing.T) (*ActionLogRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewActionLogRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestActionLogRepositoryCreateAssignsDefaults(t *testing.T) {
	repo, mock, cleanup := newActionLogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO action_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ActionLog{
		SessionID:  "s1",
		UserID:     "u1",
		Entity:     "change_request",
		EntityID:   "cr-1",
		Action:     "submit",
		FromStatus: "Draft",
		ToStatus:   "UnderReview",
		Outcome:    models.OutcomeSucceeded,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionLogRepositoryListFilters(t *testing.T) {
	repo, mock, cleanup := newActionLogRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(actionLogColumns).
		AddRow("log-1", "s1", "u1", "task", "t-1", "block", "InProgress", "Blocked", "succeeded", nil, "req-1", 42, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM action_logs WHERE entity = $1 AND entity_id = $2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("task", "t-1", 100).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), ActionLogFilter{Entity: "task", EntityID: "t-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "block", entries[0].Action)
	assert.EqualValues(t, 42, entries[0].DurationMS)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionLogRepositoryEnsureSchema(t *testing.T) {
	repo, mock, cleanup := newActionLogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS action_logs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
