package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NotStarted"
	TaskInProgress TaskStatus = "InProgress"
	TaskBlocked    TaskStatus = "Blocked"
	TaskCompleted  TaskStatus = "Completed"
	TaskCancelled  TaskStatus = "Cancelled"
)

// Task mirrors the upstream task resource.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`

	AssignedToUserID       *string `json:"assignedToUserId,omitempty"`
	AssignedToDepartmentID *string `json:"assignedToDepartmentId,omitempty"`

	EstimatedHours float64    `json:"estimatedHours,omitempty"`
	ActualHours    float64    `json:"actualHours"`
	DueDate        *time.Time `json:"dueDate,omitempty"`

	BlockedReason string     `json:"blockedReason,omitempty"`
	BlockedDate   *time.Time `json:"blockedDate,omitempty"`

	ImplementationNotes string `json:"implementationNotes,omitempty"`
	ResolutionNotes     string `json:"resolutionNotes,omitempty"`

	CreatedByUserID   string     `json:"createdByUserId,omitempty"`
	StartedByUserID   *string    `json:"startedByUserId,omitempty"`
	CompletedByUserID *string    `json:"completedByUserId,omitempty"`
	StartedDate       *time.Time `json:"startedDate,omitempty"`
	CompletedDate     *time.Time `json:"completedDate,omitempty"`
	CreatedDate       time.Time  `json:"createdDate"`
	LastModifiedDate  *time.Time `json:"lastModifiedDate,omitempty"`
}

// Claimable reports whether a department-assigned task is still waiting for an individual owner.
func (t Task) Claimable() bool {
	return t.AssignedToDepartmentID != nil && *t.AssignedToDepartmentID != "" &&
		(t.AssignedToUserID == nil || *t.AssignedToUserID == "")
}

// Assignee returns the individual assignee id or an empty string.
func (t Task) Assignee() string {
	if t.AssignedToUserID == nil {
		return ""
	}
	return *t.AssignedToUserID
}

// TaskInput is the payload for creating a task under a project.
type TaskInput struct {
	ProjectID      string     `json:"projectId" validate:"required"`
	Title          string     `json:"title" validate:"required,nonblank,max=200"`
	Description    string     `json:"description,omitempty"`
	Priority       Priority   `json:"priority" validate:"required,oneof=Low Medium High Critical"`
	EstimatedHours float64    `json:"estimatedHours,omitempty" validate:"gte=0"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
}
