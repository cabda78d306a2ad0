package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "OnHold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

// Project mirrors the upstream project resource.
type Project struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Status           ProjectStatus    `json:"status"`
	ManagerUserID    *string          `json:"managerUserId,omitempty"`
	DepartmentID     *string          `json:"departmentId,omitempty"`
	ProjectRequestID *string          `json:"projectRequestId,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
	StartDate        *time.Time       `json:"startDate,omitempty"`
	EndDate          *time.Time       `json:"endDate,omitempty"`
	CreatedDate      time.Time        `json:"createdDate"`
	LastModifiedDate *time.Time       `json:"lastModifiedDate,omitempty"`
}

// Progress summarises task completion for a project.
type Progress struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	Percent        float64 `json:"percent"`
}

// ComputeProgress derives progress from a project's tasks. Cancelled tasks do not count.
func ComputeProgress(tasks []Task) Progress {
	var p Progress
	for _, t := range tasks {
		if t.Status == TaskCancelled {
			continue
		}
		p.TotalTasks++
		if t.Status == TaskCompleted {
			p.CompletedTasks++
		}
	}
	if p.TotalTasks > 0 {
		ratio := decimal.NewFromInt(int64(p.CompletedTasks)).
			Div(decimal.NewFromInt(int64(p.TotalTasks))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		p.Percent = ratio.InexactFloat64()
	}
	return p
}
