package dto

import (
	"encoding/json"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ChangeRequestView is a change request plus the controls the UI may render.
type ChangeRequestView struct {
	ChangeRequest models.ChangeRequest `json:"changeRequest"`
	Actions       []string             `json:"actions"`
	Editable      bool                 `json:"editable"`
}

// TaskView is a task plus its available status actions and operations.
type TaskView struct {
	Task       models.Task `json:"task"`
	Actions    []string    `json:"actions"`
	Operations []string    `json:"operations"`
}

// ProjectRequestView is a project request plus its available actions.
type ProjectRequestView struct {
	ProjectRequest models.ProjectRequest `json:"projectRequest"`
	Actions        []string              `json:"actions"`
}

// ProjectView is a project, its derived progress and available actions.
type ProjectView struct {
	Project  models.Project   `json:"project"`
	Progress *models.Progress `json:"progress,omitempty"`
	Actions  []string         `json:"actions"`
}

// UserMatch is one ranked result of the assignee picker.
type UserMatch struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Distance int    `json:"distance"`
}

// DashboardResponse bundles the reports fetched for the landing page.
// Reports that failed are listed in Errors and omitted from Reports.
type DashboardResponse struct {
	Reports map[string]json.RawMessage `json:"reports"`
	Errors  map[string]string          `json:"errors,omitempty"`
}

// SessionResponse is returned on login.
type SessionResponse struct {
	SessionID string      `json:"sessionId"`
	ExpiresAt string      `json:"expiresAt"`
	User      models.User `json:"user"`
}
