package models

import "time"

// ProjectRequestStatus is the intake workflow state of a project request.
type ProjectRequestStatus string

const (
	ProjectRequestDraft     ProjectRequestStatus = "Draft"
	ProjectRequestPending   ProjectRequestStatus = "Pending"
	ProjectRequestApproved  ProjectRequestStatus = "Approved"
	ProjectRequestDenied    ProjectRequestStatus = "Denied"
	ProjectRequestConverted ProjectRequestStatus = "Converted"
	ProjectRequestCancelled ProjectRequestStatus = "Cancelled"
)

// ProjectRequest mirrors the upstream project request resource.
type ProjectRequest struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	Description           string               `json:"description"`
	BusinessJustification string               `json:"businessJustification,omitempty"`
	Status                ProjectRequestStatus `json:"status"`
	Priority              Priority             `json:"priority"`
	DepartmentID          *string              `json:"departmentId,omitempty"`
	ApprovalNotes         string               `json:"approvalNotes,omitempty"`
	ApprovedDate          *time.Time           `json:"approvedDate,omitempty"`
	DenialReason          string               `json:"denialReason,omitempty"`
	DeniedDate            *time.Time           `json:"deniedDate,omitempty"`
	ConvertedProjectID    *string              `json:"convertedProjectId,omitempty"`
	CreatedByUserID       string               `json:"createdByUserId,omitempty"`
	CreatedDate           time.Time            `json:"createdDate"`
	LastModifiedDate      *time.Time           `json:"lastModifiedDate,omitempty"`
}

// ProjectRequestInput is the payload for creating a project request.
type ProjectRequestInput struct {
	Title                 string   `json:"title" validate:"required,nonblank,max=200"`
	Description           string   `json:"description" validate:"required,nonblank"`
	BusinessJustification string   `json:"businessJustification,omitempty"`
	Priority              Priority `json:"priority" validate:"required,oneof=Low Medium High Critical"`
	DepartmentID          *string  `json:"departmentId,omitempty"`
}
