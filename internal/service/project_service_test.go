package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

func TestProjectServiceGetDerivesProgress(t *testing.T) {
	backend := &backendStub{
		projects: []models.Project{{ID: "p-1", Name: "Datacenter exit", Status: models.ProjectActive}},
		tasks: []models.Task{
			{ID: "1", Status: models.TaskCompleted},
			{ID: "2", Status: models.TaskCompleted},
			{ID: "3", Status: models.TaskInProgress},
			{ID: "4", Status: models.TaskCancelled},
		},
	}
	svc := NewProjectService(backend, &dispatcherStub{}, nil)

	view, err := svc.Get(context.Background(), testSession, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", backend.tasksProject)
	require.NotNil(t, view.Progress)
	assert.Equal(t, 3, view.Progress.TotalTasks)
	assert.Equal(t, 2, view.Progress.CompletedTasks)
	assert.InDelta(t, 66.7, view.Progress.Percent, 0.001)
	assert.Equal(t, []string{"hold", "complete", "cancel"}, view.Actions)
}

func TestProjectServiceGetPropagatesErrors(t *testing.T) {
	svc := NewProjectService(&backendStub{}, &dispatcherStub{}, nil)

	_, err := svc.Get(context.Background(), testSession, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestProjectRequestServiceCreateAndAct(t *testing.T) {
	d := &dispatcherStub{}
	svc := NewProjectRequestService(&backendStub{}, d, nil, nil)

	_, err := svc.Create(context.Background(), testSession, models.ProjectRequestInput{Title: "CRM", Priority: models.PriorityLow})
	require.Error(t, err)
	assert.Equal(t, "description is required", appErrors.Message(err))

	view, err := svc.Create(context.Background(), testSession, models.ProjectRequestInput{
		Title: "CRM", Description: "Replace the spreadsheet", Priority: models.PriorityLow,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"submit", "cancel"}, view.Actions)

	view, err = svc.Act(context.Background(), testSession, "pr-1", "submit", nil)
	require.NoError(t, err)
	assert.Equal(t, "submit", d.lastAction)
	assert.Equal(t, []string{"approve", "deny", "cancel"}, view.Actions)
}

func TestProjectServiceActHasNoProgress(t *testing.T) {
	d := &dispatcherStub{}
	svc := NewProjectService(&backendStub{}, d, nil)

	view, err := svc.Act(context.Background(), testSession, "p-1", "hold", []byte(`{"reason":"budget freeze"}`))
	require.NoError(t, err)
	assert.Equal(t, "hold", d.lastAction)
	assert.Nil(t, view.Progress)
	assert.Equal(t, []string{"resume", "cancel"}, view.Actions)
}
