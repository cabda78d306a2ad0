package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
)

func TestChangeRequestTable(t *testing.T) {
	permitted := map[models.ChangeRequestStatus]map[ChangeAction]models.ChangeRequestStatus{
		models.ChangeDraft:       {ChangeSubmit: models.ChangeUnderReview},
		models.ChangeUnderReview: {ChangeApprove: models.ChangeApproved, ChangeDeny: models.ChangeDenied},
		models.ChangeApproved:    {ChangeSchedule: models.ChangeScheduled, ChangeCancel: models.ChangeCancelled},
		models.ChangeScheduled:   {ChangeStart: models.ChangeInProgress, ChangeCancel: models.ChangeCancelled},
		models.ChangeInProgress: {
			ChangeComplete: models.ChangeCompleted,
			ChangeFail:     models.ChangeFailed,
			ChangeRollback: models.ChangeRolledBack,
		},
		models.ChangeFailed: {ChangeRollback: models.ChangeRolledBack},
	}

	for _, status := range ChangeRequestFlow.States() {
		for _, action := range ChangeRequestFlow.AllActions() {
			want, ok := permitted[status][action]
			got, can := ChangeRequestFlow.Next(status, action)
			assert.Equal(t, ok, can, "%s --%s-->", status, action)
			if ok {
				assert.Equal(t, want, got, "%s --%s-->", status, action)
			}
		}
	}
}

func TestChangeRequestTerminalStatesRenderNothing(t *testing.T) {
	for _, status := range []models.ChangeRequestStatus{
		models.ChangeCompleted, models.ChangeDenied, models.ChangeCancelled, models.ChangeRolledBack,
	} {
		assert.True(t, ChangeRequestFlow.Terminal(status), status)
		actions := ChangeRequestActions(models.ChangeRequest{Status: status})
		assert.NotNil(t, actions)
		assert.Empty(t, actions, status)
	}
	assert.False(t, ChangeRequestFlow.Terminal(models.ChangeFailed))
	assert.Equal(t, []ChangeAction{ChangeRollback}, ChangeRequestFlow.Actions(models.ChangeFailed))
	assert.Equal(t, models.ChangeDraft, ChangeRequestFlow.Initial())
}

func TestUnknownStatusHasNoActions(t *testing.T) {
	assert.Empty(t, ChangeRequestFlow.Actions("Archived"))
	assert.False(t, ChangeRequestFlow.Terminal("Archived"))
	assert.False(t, ChangeRequestFlow.Can("Archived", ChangeSubmit))
}

func TestTaskTable(t *testing.T) {
	permitted := map[models.TaskStatus]map[TaskAction]models.TaskStatus{
		models.TaskNotStarted: {TaskClaim: models.TaskNotStarted, TaskStart: models.TaskInProgress, TaskCancel: models.TaskCancelled},
		models.TaskInProgress: {TaskComplete: models.TaskCompleted, TaskBlock: models.TaskBlocked, TaskCancel: models.TaskCancelled},
		models.TaskBlocked:    {TaskUnblock: models.TaskInProgress, TaskCancel: models.TaskCancelled},
	}
	for _, status := range TaskFlow.States() {
		for _, action := range TaskFlow.AllActions() {
			want, ok := permitted[status][action]
			got, can := TaskFlow.Next(status, action)
			assert.Equal(t, ok, can, "%s --%s-->", status, action)
			if ok {
				assert.Equal(t, want, got)
			}
		}
	}
	assert.True(t, TaskFlow.Terminal(models.TaskCompleted))
	assert.True(t, TaskFlow.Terminal(models.TaskCancelled))
}

func TestTaskClaimGuard(t *testing.T) {
	dept := "ops"
	user := "u-1"

	unassigned := models.Task{Status: models.TaskNotStarted}
	assert.Equal(t, []TaskAction{TaskStart, TaskCancel}, TaskActions(unassigned))

	pooled := models.Task{Status: models.TaskNotStarted, AssignedToDepartmentID: &dept}
	assert.Equal(t, []TaskAction{TaskClaim, TaskStart, TaskCancel}, TaskActions(pooled))
	assert.True(t, TaskCan(pooled, TaskClaim))

	claimed := pooled
	claimed.AssignedToUserID = &user
	assert.False(t, TaskCan(claimed, TaskClaim))
}

func TestTaskOperations(t *testing.T) {
	assert.Equal(t,
		[]TaskOperation{OpAssignToUser, OpAssignToDepartment, OpAddChecklistItem, OpToggleChecklist},
		TaskOperations(models.Task{Status: models.TaskNotStarted}))
	assert.True(t, TaskOperationAllowed(models.Task{Status: models.TaskBlocked}, OpLogTime))
	assert.True(t, TaskOperationAllowed(models.Task{Status: models.TaskInProgress}, OpLogTime))
	assert.Empty(t, TaskOperations(models.Task{Status: models.TaskCompleted}))
	assert.Empty(t, TaskOperations(models.Task{Status: models.TaskCancelled}))

	for _, op := range TaskOperations(models.Task{Status: models.TaskInProgress}) {
		assert.False(t, TaskFlow.Can(models.TaskInProgress, TaskAction(op)), "operation %s leaked into transitions", op)
	}
}

func TestProjectRequestAndProjectTables(t *testing.T) {
	next, ok := ProjectRequestFlow.Next(models.ProjectRequestApproved, ProjectRequestConvert)
	require.True(t, ok)
	assert.Equal(t, models.ProjectRequestConverted, next)
	assert.True(t, ProjectRequestFlow.Terminal(models.ProjectRequestConverted))
	assert.True(t, ProjectRequestFlow.Terminal(models.ProjectRequestDenied))
	assert.False(t, ProjectRequestFlow.Can(models.ProjectRequestConverted, ProjectRequestCancel))

	projectNext, ok := ProjectFlow.Next(models.ProjectOnHold, ProjectResume)
	require.True(t, ok)
	assert.Equal(t, models.ProjectActive, projectNext)
	assert.Equal(t, []ProjectAction{ProjectActivate, ProjectCancel}, ProjectFlow.Actions(models.ProjectPlanning))
	assert.Empty(t, ProjectFlow.Actions(models.ProjectCompleted))
}

func TestEveryFlowIsInternallyConsistent(t *testing.T) {
	assertConsistent(t, ChangeRequestFlow)
	assertConsistent(t, TaskFlow)
	assertConsistent(t, ProjectRequestFlow)
	assertConsistent(t, ProjectFlow)
}

func assertConsistent[S ~string, A ~string](t *testing.T, f *Flow[S, A]) {
	t.Helper()
	for _, s := range f.States() {
		if f.Terminal(s) {
			assert.Empty(t, f.Actions(s), "%s: terminal %s has actions", f.Name(), s)
		}
		for _, a := range f.Actions(s) {
			to, ok := f.Next(s, a)
			require.True(t, ok)
			assert.True(t, f.Known(to), "%s: %s --%s--> %s", f.Name(), s, a, to)
		}
	}
}

func TestDefineRejectsBadTables(t *testing.T) {
	type st string
	type ac string

	_, err := Define("bad", st("A"), []st{"A"}, map[st][]Transition[st, ac]{
		"A": {{Action: "go", To: "B"}},
	})
	assert.ErrorContains(t, err, "undeclared")

	_, err = Define("dup", st("A"), []st{"A", "B"}, map[st][]Transition[st, ac]{
		"A": {{Action: "go", To: "B"}, {Action: "go", To: "A"}},
	})
	assert.ErrorContains(t, err, "twice")

	_, err = Define("init", st("Z"), []st{"A"}, map[st][]Transition[st, ac]{})
	assert.Error(t, err)
}
