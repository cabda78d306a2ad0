package models

import "time"

// ChangeType classifies how much review a change needs.
type ChangeType string

const (
	ChangeTypeStandard  ChangeType = "Standard"
	ChangeTypeNormal    ChangeType = "Normal"
	ChangeTypeEmergency ChangeType = "Emergency"
)

// Priority is shared by change requests, tasks and project requests.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// RiskLevel grades the blast radius of a change.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ChangeRequestStatus is the CAB workflow state of a change request.
type ChangeRequestStatus string

const (
	ChangeDraft       ChangeRequestStatus = "Draft"
	ChangeUnderReview ChangeRequestStatus = "UnderReview"
	ChangeApproved    ChangeRequestStatus = "Approved"
	ChangeDenied      ChangeRequestStatus = "Denied"
	ChangeScheduled   ChangeRequestStatus = "Scheduled"
	ChangeInProgress  ChangeRequestStatus = "InProgress"
	ChangeCompleted   ChangeRequestStatus = "Completed"
	ChangeFailed      ChangeRequestStatus = "Failed"
	ChangeRolledBack  ChangeRequestStatus = "RolledBack"
	ChangeCancelled   ChangeRequestStatus = "Cancelled"
)

// ChangeRequest mirrors the upstream change request resource.
type ChangeRequest struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	ChangeType      ChangeType          `json:"changeType"`
	Priority        Priority            `json:"priority"`
	RiskLevel       RiskLevel           `json:"riskLevel"`
	Status          ChangeRequestStatus `json:"status"`
	ImpactAnalysis  string              `json:"impactAnalysis,omitempty"`
	RollbackPlan    string              `json:"rollbackPlan,omitempty"`
	AffectedSystems string              `json:"affectedSystems,omitempty"`

	ApprovedDate  *time.Time `json:"approvedDate,omitempty"`
	ApprovalNotes string     `json:"approvalNotes,omitempty"`
	DeniedDate    *time.Time `json:"deniedDate,omitempty"`
	DenialReason  string     `json:"denialReason,omitempty"`

	ScheduledStartDate *time.Time `json:"scheduledStartDate,omitempty"`
	ScheduledEndDate   *time.Time `json:"scheduledEndDate,omitempty"`
	ChangeWindow       string     `json:"changeWindow,omitempty"`

	ActualStartDate     *time.Time `json:"actualStartDate,omitempty"`
	ActualEndDate       *time.Time `json:"actualEndDate,omitempty"`
	ImplementationNotes string     `json:"implementationNotes,omitempty"`
	CompletedDate       *time.Time `json:"completedDate,omitempty"`

	RolledBackDate *time.Time `json:"rolledBackDate,omitempty"`
	RollbackReason string     `json:"rollbackReason,omitempty"`

	CreatedByUserID  string     `json:"createdByUserId,omitempty"`
	CreatedDate      time.Time  `json:"createdDate"`
	LastModifiedDate *time.Time `json:"lastModifiedDate,omitempty"`
}

// ChangeRequestInput is the writable subset used for create and Draft edits.
type ChangeRequestInput struct {
	Title           string     `json:"title" validate:"required,nonblank,max=200"`
	Description     string     `json:"description" validate:"required,nonblank"`
	ChangeType      ChangeType `json:"changeType" validate:"required,oneof=Standard Normal Emergency"`
	Priority        Priority   `json:"priority" validate:"required,oneof=Low Medium High Critical"`
	RiskLevel       RiskLevel  `json:"riskLevel" validate:"required,oneof=Low Medium High Critical"`
	ImpactAnalysis  string     `json:"impactAnalysis,omitempty"`
	RollbackPlan    string     `json:"rollbackPlan,omitempty"`
	AffectedSystems string     `json:"affectedSystems,omitempty"`
	ChangeWindow    string     `json:"changeWindow,omitempty"`
}
