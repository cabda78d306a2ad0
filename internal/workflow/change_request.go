package workflow

import "github.com/noah-isme/changedesk-api/internal/models"

// ChangeAction names a change request workflow action.
type ChangeAction string

const (
	ChangeSubmit   ChangeAction = "submit"
	ChangeApprove  ChangeAction = "approve"
	ChangeDeny     ChangeAction = "deny"
	ChangeSchedule ChangeAction = "schedule"
	ChangeStart    ChangeAction = "start"
	ChangeComplete ChangeAction = "complete"
	ChangeFail     ChangeAction = "fail"
	ChangeRollback ChangeAction = "rollback"
	ChangeCancel   ChangeAction = "cancel"
)

type changeEdge = Transition[models.ChangeRequestStatus, ChangeAction]

// ChangeRequestFlow is the CAB lifecycle. Rollback and cancel are the only
// exits that skip ahead; a completed change is never reopened.
var ChangeRequestFlow = MustDefine("change_request", models.ChangeDraft,
	[]models.ChangeRequestStatus{
		models.ChangeDraft, models.ChangeUnderReview, models.ChangeApproved,
		models.ChangeDenied, models.ChangeScheduled, models.ChangeInProgress,
		models.ChangeCompleted, models.ChangeFailed, models.ChangeRolledBack,
		models.ChangeCancelled,
	},
	map[models.ChangeRequestStatus][]changeEdge{
		models.ChangeDraft: {
			{ChangeSubmit, models.ChangeUnderReview},
		},
		models.ChangeUnderReview: {
			{ChangeApprove, models.ChangeApproved},
			{ChangeDeny, models.ChangeDenied},
		},
		models.ChangeApproved: {
			{ChangeSchedule, models.ChangeScheduled},
			{ChangeCancel, models.ChangeCancelled},
		},
		models.ChangeScheduled: {
			{ChangeStart, models.ChangeInProgress},
			{ChangeCancel, models.ChangeCancelled},
		},
		models.ChangeInProgress: {
			{ChangeComplete, models.ChangeCompleted},
			{ChangeFail, models.ChangeFailed},
			{ChangeRollback, models.ChangeRolledBack},
		},
		models.ChangeFailed: {
			{ChangeRollback, models.ChangeRolledBack},
		},
	},
)

// ChangeRequestActions returns the controls to render for a change request.
func ChangeRequestActions(cr models.ChangeRequest) []ChangeAction {
	return ChangeRequestFlow.Actions(cr.Status)
}

// Editable reports whether the change request content may still be edited.
func Editable(cr models.ChangeRequest) bool {
	return cr.Status == models.ChangeDraft
}
