package filter

import (
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/workflow"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

var (
	changeTypes = []models.ChangeType{models.ChangeTypeStandard, models.ChangeTypeNormal, models.ChangeTypeEmergency}
	priorities  = []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical}
	riskLevels  = []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
)

// ChangeRequestFilter selects change requests. Dimensions combine with AND,
// values inside a dimension with OR, and an empty dimension matches everything.
type ChangeRequestFilter struct {
	Status     []models.ChangeRequestStatus `json:"status,omitempty"`
	ChangeType []models.ChangeType          `json:"changeType,omitempty"`
	Priority   []models.Priority            `json:"priority,omitempty"`
	RiskLevel  []models.RiskLevel           `json:"riskLevel,omitempty"`
	StartDate  *time.Time                   `json:"startDate,omitempty"`
	EndDate    *time.Time                   `json:"endDate,omitempty"`
	Search     string                       `json:"search,omitempty"`
}

// ParseChangeRequestFilter reads a filter from query parameters.
func ParseChangeRequestFilter(q url.Values) (ChangeRequestFilter, error) {
	var (
		f   ChangeRequestFilter
		err error
	)
	if f.Status, err = enums("status", multi(q, "status"), workflow.ChangeRequestFlow.States()); err != nil {
		return f, err
	}
	if f.ChangeType, err = enums("changeType", multi(q, "changeType"), changeTypes); err != nil {
		return f, err
	}
	if f.Priority, err = enums("priority", multi(q, "priority"), priorities); err != nil {
		return f, err
	}
	if f.RiskLevel, err = enums("riskLevel", multi(q, "riskLevel"), riskLevels); err != nil {
		return f, err
	}
	if f.StartDate, err = parseBound("startDate", q.Get("startDate"), false); err != nil {
		return f, err
	}
	if f.EndDate, err = parseBound("endDate", q.Get("endDate"), true); err != nil {
		return f, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// Values renders the filter as query parameters.
func (f ChangeRequestFilter) Values() url.Values {
	values := url.Values{}
	setMulti(values, "status", f.Status)
	setMulti(values, "changeType", f.ChangeType)
	setMulti(values, "priority", f.Priority)
	setMulti(values, "riskLevel", f.RiskLevel)
	if f.StartDate != nil {
		values.Set("startDate", f.StartDate.Format(time.RFC3339Nano))
	}
	if f.EndDate != nil {
		values.Set("endDate", f.EndDate.Format(time.RFC3339Nano))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	return values
}

// Empty reports whether the filter places no constraint at all.
func (f ChangeRequestFilter) Empty() bool {
	return len(f.Status) == 0 && len(f.ChangeType) == 0 && len(f.Priority) == 0 &&
		len(f.RiskLevel) == 0 && f.StartDate == nil && f.EndDate == nil && strings.TrimSpace(f.Search) == ""
}

// Apply returns the matching items in their original order.
func (f ChangeRequestFilter) Apply(items []models.ChangeRequest) []models.ChangeRequest {
	search := newMatcher(f.Search)
	out := make([]models.ChangeRequest, 0, len(items))
	for _, cr := range items {
		if !in(f.Status, cr.Status) ||
			!in(f.ChangeType, cr.ChangeType) ||
			!in(f.Priority, cr.Priority) ||
			!in(f.RiskLevel, cr.RiskLevel) ||
			!withinRange(cr.CreatedDate, f.StartDate, f.EndDate) ||
			!search.match(cr.Title, cr.Description, cr.AffectedSystems) {
			continue
		}
		out = append(out, cr)
	}
	return out
}
