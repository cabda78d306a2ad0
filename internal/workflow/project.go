package workflow

import "github.com/noah-isme/changedesk-api/internal/models"

// ProjectRequestAction names a project request intake action.
type ProjectRequestAction string

const (
	ProjectRequestSubmit  ProjectRequestAction = "submit"
	ProjectRequestApprove ProjectRequestAction = "approve"
	ProjectRequestDeny    ProjectRequestAction = "deny"
	ProjectRequestConvert ProjectRequestAction = "convert"
	ProjectRequestCancel  ProjectRequestAction = "cancel"
)

type projectRequestEdge = Transition[models.ProjectRequestStatus, ProjectRequestAction]

// ProjectRequestFlow is the intake lifecycle. Conversion is one-way.
var ProjectRequestFlow = MustDefine("project_request", models.ProjectRequestDraft,
	[]models.ProjectRequestStatus{
		models.ProjectRequestDraft, models.ProjectRequestPending, models.ProjectRequestApproved,
		models.ProjectRequestDenied, models.ProjectRequestConverted, models.ProjectRequestCancelled,
	},
	map[models.ProjectRequestStatus][]projectRequestEdge{
		models.ProjectRequestDraft: {
			{ProjectRequestSubmit, models.ProjectRequestPending},
			{ProjectRequestCancel, models.ProjectRequestCancelled},
		},
		models.ProjectRequestPending: {
			{ProjectRequestApprove, models.ProjectRequestApproved},
			{ProjectRequestDeny, models.ProjectRequestDenied},
			{ProjectRequestCancel, models.ProjectRequestCancelled},
		},
		models.ProjectRequestApproved: {
			{ProjectRequestConvert, models.ProjectRequestConverted},
		},
	},
)

// ProjectAction names a project delivery action.
type ProjectAction string

const (
	ProjectActivate ProjectAction = "activate"
	ProjectHold     ProjectAction = "hold"
	ProjectResume   ProjectAction = "resume"
	ProjectComplete ProjectAction = "complete"
	ProjectCancel   ProjectAction = "cancel"
)

type projectEdge = Transition[models.ProjectStatus, ProjectAction]

// ProjectFlow is the delivery lifecycle.
var ProjectFlow = MustDefine("project", models.ProjectPlanning,
	[]models.ProjectStatus{
		models.ProjectPlanning, models.ProjectActive, models.ProjectOnHold,
		models.ProjectCompleted, models.ProjectCancelled,
	},
	map[models.ProjectStatus][]projectEdge{
		models.ProjectPlanning: {
			{ProjectActivate, models.ProjectActive},
			{ProjectCancel, models.ProjectCancelled},
		},
		models.ProjectActive: {
			{ProjectHold, models.ProjectOnHold},
			{ProjectComplete, models.ProjectCompleted},
			{ProjectCancel, models.ProjectCancelled},
		},
		models.ProjectOnHold: {
			{ProjectResume, models.ProjectActive},
			{ProjectCancel, models.ProjectCancelled},
		},
	},
)
