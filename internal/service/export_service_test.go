package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

func TestExportChangeRequestsCSV(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := &backendStub{changes: []models.ChangeRequest{
		{ID: "cr-1", Title: "DB Migration", Status: models.ChangeScheduled, ScheduledStartDate: &start, AffectedSystems: "orders, billing"},
		{ID: "cr-2", Title: "Firewall", Status: models.ChangeDraft},
	}}
	changes := NewChangeRequestService(backend, &dispatcherStub{}, nil, nil)
	svc := NewExportService(changes, nil)
	svc.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }

	file, err := svc.ChangeRequests(context.Background(), testSession,
		filter.ChangeRequestFilter{Status: []models.ChangeRequestStatus{models.ChangeScheduled}}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "change-requests-20250203-040506.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, changeRequestColumns, records[0])
	assert.Equal(t, "cr-1", records[1][0])
	assert.Equal(t, "2025-01-01T00:00:00Z", records[1][6])
	assert.Equal(t, "orders, billing", records[1][8])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(NewChangeRequestService(&backendStub{}, &dispatcherStub{}, nil, nil), nil)
	_, err := svc.ChangeRequests(context.Background(), testSession, filter.ChangeRequestFilter{}, "docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportXLSX(t *testing.T) {
	backend := &backendStub{changes: []models.ChangeRequest{{ID: "cr-1", Title: "DB Migration"}}}
	svc := NewExportService(NewChangeRequestService(backend, &dispatcherStub{}, nil, nil), nil)

	file, err := svc.ChangeRequests(context.Background(), testSession, filter.ChangeRequestFilter{}, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("PK")), "xlsx is a zip archive")
}
