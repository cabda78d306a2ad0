package filter

import (
	"net/url"
	"strings"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/workflow"
)

// ProjectRequestFilter selects project requests.
type ProjectRequestFilter struct {
	Status   []models.ProjectRequestStatus `json:"status,omitempty"`
	Priority []models.Priority             `json:"priority,omitempty"`
	Search   string                        `json:"search,omitempty"`
}

// ParseProjectRequestFilter reads a filter from query parameters.
func ParseProjectRequestFilter(q url.Values) (ProjectRequestFilter, error) {
	var (
		f   ProjectRequestFilter
		err error
	)
	if f.Status, err = enums("status", multi(q, "status"), workflow.ProjectRequestFlow.States()); err != nil {
		return f, err
	}
	if f.Priority, err = enums("priority", multi(q, "priority"), priorities); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// Values renders the filter as query parameters.
func (f ProjectRequestFilter) Values() url.Values {
	values := url.Values{}
	setMulti(values, "status", f.Status)
	setMulti(values, "priority", f.Priority)
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	return values
}

// Apply returns the matching project requests in their original order.
func (f ProjectRequestFilter) Apply(items []models.ProjectRequest) []models.ProjectRequest {
	search := newMatcher(f.Search)
	out := make([]models.ProjectRequest, 0, len(items))
	for _, pr := range items {
		if in(f.Status, pr.Status) && in(f.Priority, pr.Priority) &&
			search.match(pr.Title, pr.Description, pr.BusinessJustification) {
			out = append(out, pr)
		}
	}
	return out
}

// ProjectFilter selects projects.
type ProjectFilter struct {
	Status []models.ProjectStatus `json:"status,omitempty"`
	Search string                 `json:"search,omitempty"`
}

// ParseProjectFilter reads a filter from query parameters.
func ParseProjectFilter(q url.Values) (ProjectFilter, error) {
	var (
		f   ProjectFilter
		err error
	)
	if f.Status, err = enums("status", multi(q, "status"), workflow.ProjectFlow.States()); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// Values renders the filter as query parameters.
func (f ProjectFilter) Values() url.Values {
	values := url.Values{}
	setMulti(values, "status", f.Status)
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	return values
}

// Apply returns the matching projects in their original order.
func (f ProjectFilter) Apply(items []models.Project) []models.Project {
	search := newMatcher(f.Search)
	out := make([]models.Project, 0, len(items))
	for _, p := range items {
		if in(f.Status, p.Status) && search.match(p.Name, p.Description) {
			out = append(out, p)
		}
	}
	return out
}
