package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

func validChangeInput(title string) models.ChangeRequestInput {
	return models.ChangeRequestInput{
		Title:       title,
		Description: "Move orders to the new cluster",
		ChangeType:  models.ChangeTypeNormal,
		Priority:    models.PriorityHigh,
		RiskLevel:   models.RiskMedium,
	}
}

func TestChangeRequestServiceListAppliesFilter(t *testing.T) {
	backend := &backendStub{changes: []models.ChangeRequest{
		{ID: "1", Title: "DB Migration", Status: models.ChangeDraft},
		{ID: "2", Title: "Firewall rules", Status: models.ChangeApproved},
		{ID: "3", Title: "db index rebuild", Status: models.ChangeApproved},
	}}
	svc := NewChangeRequestService(backend, &dispatcherStub{}, nil, nil)

	f, err := filter.ParseChangeRequestFilter(url.Values{"status": {"Approved"}, "search": {"DB"}})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), testSession, f)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].ID)

	all, err := svc.List(context.Background(), testSession, filter.ChangeRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestChangeRequestServiceGetBuildsView(t *testing.T) {
	backend := &backendStub{changes: []models.ChangeRequest{
		{ID: "1", Status: models.ChangeInProgress},
		{ID: "2", Status: models.ChangeCompleted},
	}}
	svc := NewChangeRequestService(backend, &dispatcherStub{}, nil, nil)

	view, err := svc.Get(context.Background(), testSession, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"complete", "fail", "rollback"}, view.Actions)
	assert.False(t, view.Editable)

	view, err = svc.Get(context.Background(), testSession, "2")
	require.NoError(t, err)
	assert.NotNil(t, view.Actions)
	assert.Empty(t, view.Actions)
}

func TestChangeRequestServiceCreateValidates(t *testing.T) {
	backend := &backendStub{}
	svc := NewChangeRequestService(backend, &dispatcherStub{}, nil, nil)

	in := validChangeInput("   ")
	_, err := svc.Create(context.Background(), testSession, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "title is required", appErrors.Message(err))
	assert.Nil(t, backend.createdChange)

	view, err := svc.Create(context.Background(), testSession, validChangeInput("DB Migration"))
	require.NoError(t, err)
	assert.True(t, view.Editable)
	assert.Equal(t, []string{"submit"}, view.Actions)
}

func TestChangeRequestServiceUpdateDraftOnly(t *testing.T) {
	backend := &backendStub{changes: []models.ChangeRequest{
		{ID: "draft", Title: "Old", Status: models.ChangeDraft},
		{ID: "review", Title: "Old", Status: models.ChangeUnderReview},
	}}
	svc := NewChangeRequestService(backend, &dispatcherStub{}, nil, nil)

	_, err := svc.Update(context.Background(), testSession, "review", validChangeInput("New"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrActionNotAllowed))
	assert.Zero(t, backend.updates)

	view, err := svc.Update(context.Background(), testSession, "draft", validChangeInput("New"))
	require.NoError(t, err)
	assert.Equal(t, 1, backend.updates)
	assert.Equal(t, "New", view.ChangeRequest.Title, "view reflects the reload")
}

func TestChangeRequestServiceActDecodesCommand(t *testing.T) {
	d := &dispatcherStub{changeStatus: models.ChangeDenied}
	svc := NewChangeRequestService(&backendStub{}, d, nil, nil)

	view, err := svc.Act(context.Background(), testSession, "1", "deny", json.RawMessage(`{"denialReason":"too risky"}`))
	require.NoError(t, err)
	assert.Equal(t, "deny", d.lastAction)
	assert.Equal(t, models.ChangeDenied, view.ChangeRequest.Status)
	assert.Empty(t, view.Actions)

	_, err = svc.Act(context.Background(), testSession, "1", "reopen", nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Act(context.Background(), testSession, "1", "approve", json.RawMessage(`{"approvalNotes":`))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
