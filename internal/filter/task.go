package filter

import (
	"net/url"
	"strings"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

// TaskFilter selects tasks.
type TaskFilter struct {
	Status     []models.TaskStatus `json:"status,omitempty"`
	Priority   []models.Priority   `json:"priority,omitempty"`
	ProjectID  string              `json:"projectId,omitempty"`
	AssigneeID string              `json:"assigneeId,omitempty"`
	Search     string              `json:"search,omitempty"`
}

// ParseTaskFilter reads a filter from query parameters.
func ParseTaskFilter(q url.Values) (TaskFilter, error) {
	var (
		f   TaskFilter
		err error
	)
	if f.Status, err = enums("status", multi(q, "status"), workflow.TaskFlow.States()); err != nil {
		return f, err
	}
	if f.Priority, err = enums("priority", multi(q, "priority"), priorities); err != nil {
		return f, err
	}
	f.ProjectID = strings.TrimSpace(q.Get("projectId"))
	f.AssigneeID = strings.TrimSpace(q.Get("assigneeId"))
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// Values renders the filter as query parameters.
func (f TaskFilter) Values() url.Values {
	values := url.Values{}
	setMulti(values, "status", f.Status)
	setMulti(values, "priority", f.Priority)
	if f.ProjectID != "" {
		values.Set("projectId", f.ProjectID)
	}
	if f.AssigneeID != "" {
		values.Set("assigneeId", f.AssigneeID)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	return values
}

// Apply returns the matching tasks in their original order.
func (f TaskFilter) Apply(items []models.Task) []models.Task {
	search := newMatcher(f.Search)
	out := make([]models.Task, 0, len(items))
	for _, t := range items {
		if !in(f.Status, t.Status) || !in(f.Priority, t.Priority) {
			continue
		}
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.AssigneeID != "" && t.Assignee() != f.AssigneeID {
			continue
		}
		if !search.match(t.Title, t.Description) {
			continue
		}
		out = append(out, t)
	}
	return out
}
