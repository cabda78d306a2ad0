package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
)

func TestTaskServiceListScopesToProject(t *testing.T) {
	backend := &backendStub{tasks: []models.Task{
		{ID: "t-1", Title: "Patch", Status: models.TaskInProgress},
		{ID: "t-2", Title: "Reboot", Status: models.TaskCompleted},
	}}
	svc := NewTaskService(backend, &dispatcherStub{}, nil, nil)

	items, err := svc.List(context.Background(), testSession, filter.TaskFilter{
		ProjectID: "p-1",
		Status:    []models.TaskStatus{models.TaskInProgress},
	})
	require.NoError(t, err)
	assert.Equal(t, "p-1", backend.tasksProject)
	require.Len(t, items, 1)
	assert.Equal(t, "t-1", items[0].ID)
}

func TestTaskServiceViewCarriesOperations(t *testing.T) {
	dept := "dep-ops"
	backend := &backendStub{tasks: []models.Task{
		{ID: "t-1", Status: models.TaskNotStarted, AssignedToDepartmentID: &dept},
		{ID: "t-2", Status: models.TaskCancelled},
	}}
	svc := NewTaskService(backend, &dispatcherStub{}, nil, nil)

	view, err := svc.Get(context.Background(), testSession, "t-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"claim", "start", "cancel"}, view.Actions)
	assert.NotContains(t, view.Operations, "log-time")

	view, err = svc.Get(context.Background(), testSession, "t-2")
	require.NoError(t, err)
	assert.Empty(t, view.Actions)
	assert.Empty(t, view.Operations)
}

func TestTaskServiceAct(t *testing.T) {
	d := &dispatcherStub{}
	svc := NewTaskService(&backendStub{}, d, nil, nil)

	view, err := svc.Act(context.Background(), testSession, "t-1", "log-time", json.RawMessage(`{"hours":1.5}`))
	require.NoError(t, err)
	assert.Equal(t, "log-time", d.lastAction)
	assert.Contains(t, view.Operations, "log-time")
}
