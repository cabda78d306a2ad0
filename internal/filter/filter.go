// Package filter projects already-fetched collections. Filters never call the
// upstream; every filter can also render itself back into query parameters so
// the same predicate can be pushed server-side.
package filter

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"

	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

const (
	dateOnlyLayout = "2006-01-02"
	minuteLayout   = "2006-01-02T15:04"
)

// in reports membership; an empty set places no constraint.
func in[T comparable](set []T, v T) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

// multi collects a multi-valued parameter given as repeated keys and/or comma lists.
func multi(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// enums converts raw values to T, rejecting anything outside allowed.
func enums[T ~string](key string, raw []string, allowed []T) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		matched := false
		for _, a := range allowed {
			if strings.EqualFold(string(a), r) {
				out = append(out, a)
				matched = true
				break
			}
		}
		if !matched {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+" value: "+r)
		}
	}
	return out, nil
}

func setMulti[T ~string](values url.Values, key string, set []T) {
	if len(set) == 0 {
		return
	}
	parts := make([]string, len(set))
	for i, v := range set {
		parts[i] = string(v)
	}
	values.Set(key, strings.Join(parts, ","))
}

// parseBound reads a date bound. A date-only upper bound covers the whole day.
func parseBound(key, raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(minuteLayout, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		if upper {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+": expected YYYY-MM-DD or RFC3339")
}

func withinRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// matcher performs case-folded substring search.
type matcher struct {
	needle string
	caser  cases.Caser
}

func newMatcher(search string) *matcher {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	caser := cases.Fold()
	return &matcher{needle: caser.String(search), caser: caser}
}

// match reports whether any field contains the needle. A nil matcher matches everything.
func (m *matcher) match(fields ...string) bool {
	if m == nil {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(m.caser.String(f), m.needle) {
			return true
		}
	}
	return false
}
