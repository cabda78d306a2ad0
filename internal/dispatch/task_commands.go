package dispatch

import (
	"encoding/json"

	"github.com/noah-isme/changedesk-api/internal/backend"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

// TaskCommand is one task action or operation with its typed payload.
type TaskCommand interface {
	Name() string
	allowed(t models.Task) bool
	upstream(id string) backend.Call
}

// ClaimTask takes a department-assigned task for the calling user.
type ClaimTask struct{}

// StartTask moves a task into progress.
type StartTask struct{}

// CompleteTask finishes a task.
type CompleteTask struct {
	ResolutionNotes string `json:"resolutionNotes,omitempty"`
}

// BlockTask parks a task. A reason is mandatory.
type BlockTask struct {
	Reason string `json:"blockedReason" label:"Blocked reason" validate:"nonblank"`
}

// UnblockTask resumes a blocked task.
type UnblockTask struct{}

// CancelTask abandons a task.
type CancelTask struct {
	Reason string `json:"reason,omitempty"`
}

// AssignTaskToUser sets the individual assignee.
type AssignTaskToUser struct {
	UserID string `json:"userId" label:"User" validate:"nonblank"`
}

// AssignTaskToDepartment hands the task to a department pool, clearing any individual assignee.
type AssignTaskToDepartment struct {
	DepartmentID string `json:"departmentId" label:"Department" validate:"nonblank"`
}

// LogTime adds hours to the task's actual time.
type LogTime struct {
	Hours float64 `json:"hours" label:"Hours" validate:"gt=0,lte=24"`
	Notes string  `json:"notes,omitempty"`
}

// AddChecklistItem appends a checklist entry.
type AddChecklistItem struct {
	Description string `json:"description" label:"Description" validate:"nonblank,max=500"`
}

// ToggleChecklistItem flips the completion flag of one checklist entry.
type ToggleChecklistItem struct {
	ItemID string `json:"itemId" label:"Checklist item" validate:"nonblank"`
}

func (ClaimTask) Name() string              { return string(workflow.TaskClaim) }
func (StartTask) Name() string              { return string(workflow.TaskStart) }
func (CompleteTask) Name() string           { return string(workflow.TaskComplete) }
func (BlockTask) Name() string              { return string(workflow.TaskBlock) }
func (UnblockTask) Name() string            { return string(workflow.TaskUnblock) }
func (CancelTask) Name() string             { return string(workflow.TaskCancel) }
func (AssignTaskToUser) Name() string       { return string(workflow.OpAssignToUser) }
func (AssignTaskToDepartment) Name() string { return string(workflow.OpAssignToDepartment) }
func (LogTime) Name() string                { return string(workflow.OpLogTime) }
func (AddChecklistItem) Name() string       { return string(workflow.OpAddChecklistItem) }
func (ToggleChecklistItem) Name() string    { return string(workflow.OpToggleChecklist) }

func (ClaimTask) allowed(t models.Task) bool    { return workflow.TaskCan(t, workflow.TaskClaim) }
func (StartTask) allowed(t models.Task) bool    { return workflow.TaskCan(t, workflow.TaskStart) }
func (CompleteTask) allowed(t models.Task) bool { return workflow.TaskCan(t, workflow.TaskComplete) }
func (BlockTask) allowed(t models.Task) bool    { return workflow.TaskCan(t, workflow.TaskBlock) }
func (UnblockTask) allowed(t models.Task) bool  { return workflow.TaskCan(t, workflow.TaskUnblock) }
func (CancelTask) allowed(t models.Task) bool   { return workflow.TaskCan(t, workflow.TaskCancel) }

func (AssignTaskToUser) allowed(t models.Task) bool {
	return workflow.TaskOperationAllowed(t, workflow.OpAssignToUser)
}

func (AssignTaskToDepartment) allowed(t models.Task) bool {
	return workflow.TaskOperationAllowed(t, workflow.OpAssignToDepartment)
}

func (LogTime) allowed(t models.Task) bool {
	return workflow.TaskOperationAllowed(t, workflow.OpLogTime)
}

func (AddChecklistItem) allowed(t models.Task) bool {
	return workflow.TaskOperationAllowed(t, workflow.OpAddChecklistItem)
}

func (ToggleChecklistItem) allowed(t models.Task) bool {
	return workflow.TaskOperationAllowed(t, workflow.OpToggleChecklist)
}

func (ClaimTask) upstream(id string) backend.Call   { return backend.TaskAction(id, "claim", nil) }
func (StartTask) upstream(id string) backend.Call   { return backend.TaskAction(id, "start", nil) }
func (UnblockTask) upstream(id string) backend.Call { return backend.TaskAction(id, "unblock", nil) }

func (c CompleteTask) upstream(id string) backend.Call {
	return backend.TaskAction(id, "complete", c)
}

func (c BlockTask) upstream(id string) backend.Call {
	return backend.TaskAction(id, "block", c)
}

func (c CancelTask) upstream(id string) backend.Call {
	return backend.TaskAction(id, "cancel", c)
}

func (c AssignTaskToUser) upstream(id string) backend.Call {
	return backend.TaskAction(id, "assign-to-user", c)
}

func (c AssignTaskToDepartment) upstream(id string) backend.Call {
	return backend.TaskAction(id, "assign-to-department", c)
}

func (c LogTime) upstream(id string) backend.Call {
	return backend.TaskAction(id, "log-time", c)
}

func (c AddChecklistItem) upstream(id string) backend.Call {
	return backend.TaskAction(id, "checklist", c)
}

func (c ToggleChecklistItem) upstream(id string) backend.Call {
	return backend.ToggleChecklistItem(id, c.ItemID)
}

var taskOperations = []workflow.TaskOperation{
	workflow.OpAssignToUser,
	workflow.OpAssignToDepartment,
	workflow.OpLogTime,
	workflow.OpAddChecklistItem,
	workflow.OpToggleChecklist,
}

// DecodeTaskCommand turns a wire action name and JSON body into a command.
func DecodeTaskCommand(action string, raw json.RawMessage) (TaskCommand, error) {
	switch action {
	case string(workflow.TaskClaim):
		return decode[ClaimTask](raw)
	case string(workflow.TaskStart):
		return decode[StartTask](raw)
	case string(workflow.TaskComplete):
		return decode[CompleteTask](raw)
	case string(workflow.TaskBlock):
		return decode[BlockTask](raw)
	case string(workflow.TaskUnblock):
		return decode[UnblockTask](raw)
	case string(workflow.TaskCancel):
		return decode[CancelTask](raw)
	case string(workflow.OpAssignToUser):
		return decode[AssignTaskToUser](raw)
	case string(workflow.OpAssignToDepartment):
		return decode[AssignTaskToDepartment](raw)
	case string(workflow.OpLogTime):
		return decode[LogTime](raw)
	case string(workflow.OpAddChecklistItem):
		return decode[AddChecklistItem](raw)
	case string(workflow.OpToggleChecklist):
		return decode[ToggleChecklistItem](raw)
	default:
		return nil, unknownAction("task", action, append(names(workflow.TaskFlow.AllActions()), names(taskOperations)...))
	}
}
