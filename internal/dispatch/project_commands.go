package dispatch

import (
	"encoding/json"

	"github.com/noah-isme/changedesk-api/internal/backend"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

// ProjectRequestCommand is one project request action with its typed payload.
type ProjectRequestCommand interface {
	Action() workflow.ProjectRequestAction
	upstream(id string) backend.Call
}

// SubmitProjectRequest sends a Draft for approval.
type SubmitProjectRequest struct{}

// ApproveProjectRequest approves a pending request.
type ApproveProjectRequest struct {
	Notes string `json:"approvalNotes,omitempty"`
}

// DenyProjectRequest denies a pending request. A reason is mandatory.
type DenyProjectRequest struct {
	Reason string `json:"denialReason" label:"Denial reason" validate:"nonblank"`
}

// ConvertProjectRequest turns an approved request into a project.
type ConvertProjectRequest struct {
	ManagerUserID string     `json:"managerUserId,omitempty"`
	StartDate     *Timestamp `json:"startDate,omitempty"`
}

// CancelProjectRequest withdraws a request.
type CancelProjectRequest struct{}

func (SubmitProjectRequest) Action() workflow.ProjectRequestAction {
	return workflow.ProjectRequestSubmit
}

func (ApproveProjectRequest) Action() workflow.ProjectRequestAction {
	return workflow.ProjectRequestApprove
}

func (DenyProjectRequest) Action() workflow.ProjectRequestAction {
	return workflow.ProjectRequestDeny
}

func (ConvertProjectRequest) Action() workflow.ProjectRequestAction {
	return workflow.ProjectRequestConvert
}

func (CancelProjectRequest) Action() workflow.ProjectRequestAction {
	return workflow.ProjectRequestCancel
}

func (SubmitProjectRequest) upstream(id string) backend.Call {
	return backend.ProjectRequestAction(id, "submit", nil)
}

func (c ApproveProjectRequest) upstream(id string) backend.Call {
	return backend.ProjectRequestAction(id, "approve", c)
}

func (c DenyProjectRequest) upstream(id string) backend.Call {
	return backend.ProjectRequestAction(id, "deny", c)
}

func (c ConvertProjectRequest) upstream(id string) backend.Call {
	return backend.ProjectRequestAction(id, "convert", c)
}

func (CancelProjectRequest) upstream(id string) backend.Call {
	return backend.ProjectRequestAction(id, "cancel", nil)
}

// DecodeProjectRequestCommand turns a wire action name and JSON body into a command.
func DecodeProjectRequestCommand(action string, raw json.RawMessage) (ProjectRequestCommand, error) {
	switch workflow.ProjectRequestAction(action) {
	case workflow.ProjectRequestSubmit:
		return decode[SubmitProjectRequest](raw)
	case workflow.ProjectRequestApprove:
		return decode[ApproveProjectRequest](raw)
	case workflow.ProjectRequestDeny:
		return decode[DenyProjectRequest](raw)
	case workflow.ProjectRequestConvert:
		return decode[ConvertProjectRequest](raw)
	case workflow.ProjectRequestCancel:
		return decode[CancelProjectRequest](raw)
	default:
		return nil, unknownAction("project request", action, names(workflow.ProjectRequestFlow.AllActions()))
	}
}

// ProjectCommand is one project action with its typed payload.
type ProjectCommand interface {
	Action() workflow.ProjectAction
	upstream(id string) backend.Call
}

// ActivateProject starts delivery.
type ActivateProject struct{}

// HoldProject pauses delivery.
type HoldProject struct {
	Reason string `json:"reason,omitempty"`
}

// ResumeProject resumes a paused project.
type ResumeProject struct{}

// CompleteProject closes delivery.
type CompleteProject struct{}

// CancelProject abandons the project.
type CancelProject struct {
	Reason string `json:"reason,omitempty"`
}

func (ActivateProject) Action() workflow.ProjectAction { return workflow.ProjectActivate }
func (HoldProject) Action() workflow.ProjectAction     { return workflow.ProjectHold }
func (ResumeProject) Action() workflow.ProjectAction   { return workflow.ProjectResume }
func (CompleteProject) Action() workflow.ProjectAction { return workflow.ProjectComplete }
func (CancelProject) Action() workflow.ProjectAction   { return workflow.ProjectCancel }

func (ActivateProject) upstream(id string) backend.Call {
	return backend.ProjectAction(id, "activate", nil)
}

func (c HoldProject) upstream(id string) backend.Call {
	return backend.ProjectAction(id, "hold", c)
}

func (ResumeProject) upstream(id string) backend.Call {
	return backend.ProjectAction(id, "resume", nil)
}

func (CompleteProject) upstream(id string) backend.Call {
	return backend.ProjectAction(id, "complete", nil)
}

func (c CancelProject) upstream(id string) backend.Call {
	return backend.ProjectAction(id, "cancel", c)
}

// DecodeProjectCommand turns a wire action name and JSON body into a command.
func DecodeProjectCommand(action string, raw json.RawMessage) (ProjectCommand, error) {
	switch workflow.ProjectAction(action) {
	case workflow.ProjectActivate:
		return decode[ActivateProject](raw)
	case workflow.ProjectHold:
		return decode[HoldProject](raw)
	case workflow.ProjectResume:
		return decode[ResumeProject](raw)
	case workflow.ProjectComplete:
		return decode[CompleteProject](raw)
	case workflow.ProjectCancel:
		return decode[CancelProject](raw)
	default:
		return nil, unknownAction("project", action, names(workflow.ProjectFlow.AllActions()))
	}
}
