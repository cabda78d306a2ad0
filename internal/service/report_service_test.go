package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

func TestReportServiceCachesPerUser(t *testing.T) {
	backend := &backendStub{reports: map[string]json.RawMessage{
		"change-requests/summary": json.RawMessage(`{"total":4}`),
	}}
	cache := NewCacheService(newMemoryCache(), NewMetricsService(), time.Minute, nil, true)
	svc := NewReportService(backend, cache, nil, ReportServiceConfig{})

	raw, hit, err := svc.Report(context.Background(), testSession, "change-requests/summary", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.JSONEq(t, `{"total":4}`, string(raw))

	raw, hit, err = svc.Report(context.Background(), testSession, "/change-requests/summary/", url.Values{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"total":4}`, string(raw))
	assert.Equal(t, 1, backend.reportCalls)

	require.NoError(t, svc.InvalidateUser(context.Background(), testSession.UserID()))
	_, hit, err = svc.Report(context.Background(), testSession, "change-requests/summary", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, backend.reportCalls)
}

func TestReportServiceRejectsOddNames(t *testing.T) {
	svc := NewReportService(&backendStub{}, nil, nil, ReportServiceConfig{})
	for _, name := range []string{"../admin", "tasks/../users", "Summary", ""} {
		_, _, err := svc.Report(context.Background(), testSession, name, nil)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), name)
	}
}

func TestDashboardCollectsPartialFailures(t *testing.T) {
	backend := &backendStub{
		reports: map[string]json.RawMessage{
			"tasks/summary":    json.RawMessage(`{"open":3}`),
			"projects/summary": json.RawMessage(`{"active":1}`),
		},
		reportErrs: map[string]error{
			"change-requests/summary": appErrors.Clone(appErrors.ErrBackendUnavailable, "report service down"),
		},
	}
	svc := NewReportService(backend, nil, nil, ReportServiceConfig{
		Dashboard: []string{"change-requests/summary", "tasks/summary", "projects/summary"},
	})

	resp, err := svc.Dashboard(context.Background(), testSession)
	require.NoError(t, err)
	assert.Len(t, resp.Reports, 2)
	assert.JSONEq(t, `{"open":3}`, string(resp.Reports["tasks/summary"]))
	assert.Equal(t, map[string]string{"change-requests/summary": "report service down"}, resp.Errors)
}

func TestDashboardFailsOnUnauthorized(t *testing.T) {
	backend := &backendStub{reportErrs: map[string]error{"tasks/summary": appErrors.ErrUnauthorized}}
	svc := NewReportService(backend, nil, nil, ReportServiceConfig{Dashboard: []string{"tasks/summary"}})

	_, err := svc.Dashboard(context.Background(), testSession)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
