package dispatch

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/changedesk-api/internal/backend"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

// ChangeCommand is one change request action with its typed payload.
// The set of implementations is closed to this package.
type ChangeCommand interface {
	Action() workflow.ChangeAction
	upstream(id string) backend.Call
}

// SubmitChange sends a Draft into CAB review.
type SubmitChange struct{}

// ApproveChange records the CAB approval.
type ApproveChange struct {
	Notes string `json:"approvalNotes,omitempty"`
}

// DenyChange records the CAB denial. A reason is mandatory.
type DenyChange struct {
	Reason string `json:"denialReason" label:"Denial reason" validate:"nonblank"`
}

// ScheduleChange books the change window. Both ends are mandatory and the end must follow the start.
type ScheduleChange struct {
	Start        *Timestamp `json:"scheduledStartDate"`
	End          *Timestamp `json:"scheduledEndDate"`
	ChangeWindow string     `json:"changeWindow,omitempty"`
}

// StartChange begins execution.
type StartChange struct{}

// CompleteChange closes a successful execution.
type CompleteChange struct {
	Notes string `json:"implementationNotes,omitempty"`
}

// FailChange marks the execution as failed.
type FailChange struct {
	Notes string `json:"implementationNotes,omitempty"`
}

// RollbackChange reverts an in-progress or failed change. A reason is mandatory.
type RollbackChange struct {
	Reason string `json:"rollbackReason" label:"Rollback reason" validate:"nonblank"`
}

// CancelChange withdraws an approved or scheduled change.
type CancelChange struct {
	Reason string `json:"reason,omitempty"`
}

func (SubmitChange) Action() workflow.ChangeAction   { return workflow.ChangeSubmit }
func (ApproveChange) Action() workflow.ChangeAction  { return workflow.ChangeApprove }
func (DenyChange) Action() workflow.ChangeAction     { return workflow.ChangeDeny }
func (ScheduleChange) Action() workflow.ChangeAction { return workflow.ChangeSchedule }
func (StartChange) Action() workflow.ChangeAction    { return workflow.ChangeStart }
func (CompleteChange) Action() workflow.ChangeAction { return workflow.ChangeComplete }
func (FailChange) Action() workflow.ChangeAction     { return workflow.ChangeFail }
func (RollbackChange) Action() workflow.ChangeAction { return workflow.ChangeRollback }
func (CancelChange) Action() workflow.ChangeAction   { return workflow.ChangeCancel }

func (SubmitChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "submit", nil)
}

func (c ApproveChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "approve", c)
}

func (c DenyChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "deny", c)
}

func (c ScheduleChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "schedule", c)
}

func (StartChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "start-execution", nil)
}

func (c CompleteChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "complete", c)
}

func (c FailChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "mark-failed", c)
}

func (c RollbackChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "rollback", c)
}

func (c CancelChange) upstream(id string) backend.Call {
	return backend.ChangeRequestAction(id, "cancel", c)
}

// DecodeChangeCommand turns a wire action name and JSON body into a command.
func DecodeChangeCommand(action string, raw json.RawMessage) (ChangeCommand, error) {
	switch workflow.ChangeAction(action) {
	case workflow.ChangeSubmit:
		return decode[SubmitChange](raw)
	case workflow.ChangeApprove:
		return decode[ApproveChange](raw)
	case workflow.ChangeDeny:
		return decode[DenyChange](raw)
	case workflow.ChangeSchedule:
		return decode[ScheduleChange](raw)
	case workflow.ChangeStart:
		return decode[StartChange](raw)
	case workflow.ChangeComplete:
		return decode[CompleteChange](raw)
	case workflow.ChangeFail:
		return decode[FailChange](raw)
	case workflow.ChangeRollback:
		return decode[RollbackChange](raw)
	case workflow.ChangeCancel:
		return decode[CancelChange](raw)
	default:
		return nil, unknownAction("change request", action, names(workflow.ChangeRequestFlow.AllActions()))
	}
}

func validateSchedule(sl validator.StructLevel) {
	s := sl.Current().Interface().(ScheduleChange)
	switch {
	case blank(s.Start):
		sl.ReportError(s.Start, "Scheduled start", "Start", "required", "")
	case blank(s.End):
		sl.ReportError(s.End, "Scheduled end", "End", "required", "")
	case !s.End.After(s.Start.Time):
		sl.ReportError(s.End, "Scheduled end", "End", "after", "scheduled start")
	}
}
