package workflow

import "github.com/noah-isme/changedesk-api/internal/models"

// TaskAction names a task status action.
type TaskAction string

const (
	TaskClaim    TaskAction = "claim"
	TaskStart    TaskAction = "start"
	TaskComplete TaskAction = "complete"
	TaskBlock    TaskAction = "block"
	TaskUnblock  TaskAction = "unblock"
	TaskCancel   TaskAction = "cancel"
)

// TaskOperation names a task mutation that does not change its status.
type TaskOperation string

const (
	OpAssignToUser       TaskOperation = "assign-to-user"
	OpAssignToDepartment TaskOperation = "assign-to-department"
	OpLogTime            TaskOperation = "log-time"
	OpAddChecklistItem   TaskOperation = "add-checklist-item"
	OpToggleChecklist    TaskOperation = "toggle-checklist-item"
)

type taskEdge = Transition[models.TaskStatus, TaskAction]

// TaskFlow is the task lifecycle. Claim keeps the status and only sets the assignee.
var TaskFlow = MustDefine("task", models.TaskNotStarted,
	[]models.TaskStatus{
		models.TaskNotStarted, models.TaskInProgress, models.TaskBlocked,
		models.TaskCompleted, models.TaskCancelled,
	},
	map[models.TaskStatus][]taskEdge{
		models.TaskNotStarted: {
			{TaskClaim, models.TaskNotStarted},
			{TaskStart, models.TaskInProgress},
			{TaskCancel, models.TaskCancelled},
		},
		models.TaskInProgress: {
			{TaskComplete, models.TaskCompleted},
			{TaskBlock, models.TaskBlocked},
			{TaskCancel, models.TaskCancelled},
		},
		models.TaskBlocked: {
			{TaskUnblock, models.TaskInProgress},
			{TaskCancel, models.TaskCancelled},
		},
	},
)

// TaskActions applies entity guards on top of the status table.
// Claim is only offered while a department-assigned task has no individual owner.
func TaskActions(t models.Task) []TaskAction {
	return TaskFlow.Filter(t.Status, func(a TaskAction) bool {
		return a != TaskClaim || t.Claimable()
	})
}

// TaskCan reports whether action a is currently available for t.
func TaskCan(t models.Task, a TaskAction) bool {
	for _, candidate := range TaskActions(t) {
		if candidate == a {
			return true
		}
	}
	return false
}

// TaskOperations lists the non-transition mutations available for t.
// Terminal tasks are frozen; time may only be logged against active or blocked work.
func TaskOperations(t models.Task) []TaskOperation {
	if TaskFlow.Terminal(t.Status) || !TaskFlow.Known(t.Status) {
		return []TaskOperation{}
	}
	ops := []TaskOperation{OpAssignToUser, OpAssignToDepartment}
	if t.Status == models.TaskInProgress || t.Status == models.TaskBlocked {
		ops = append(ops, OpLogTime)
	}
	return append(ops, OpAddChecklistItem, OpToggleChecklist)
}

// TaskOperationAllowed reports whether op is currently available for t.
func TaskOperationAllowed(t models.Task, op TaskOperation) bool {
	for _, candidate := range TaskOperations(t) {
		if candidate == op {
			return true
		}
	}
	return false
}
