// internal/models/filters.go
package models

import (
	"net/url"
	"strconv"
	"time"
)

// DefaultSearchLimit caps result sets when the caller does not ask for one.
const DefaultSearchLimit = 100

// PostedWindow is the posted-since filter enum. Values match what the
// listing source accepts on its query API.
type PostedWindow string

const (
	PostedPastDay   PostedWindow = "24hr"
	PostedPastWeek  PostedWindow = "past week"
	PostedPastMonth PostedWindow = "past month"
)

// Threshold computes the earliest acceptable post date for the window,
// relative to the supplied instant.
func (w PostedWindow) Threshold(now time.Time) time.Time {
	switch w {
	case PostedPastDay:
		return now.AddDate(0, 0, -1)
	case PostedPastWeek:
		return now.AddDate(0, 0, -7)
	case PostedPastMonth:
		return now.AddDate(0, -1, 0)
	}
	return now
}

// SearchFilters carries the optional search predicates. Absence is explicit:
// nil pointers and empty slices mean "no predicate", never "match zero".
type SearchFilters struct {
	Location         *string
	PostedSince      *PostedWindow
	JobTypes         []string
	RemoteFilters    []string
	Salary           *float64
	ExperienceLevels []string
	Limit            int
}

// ParseSearchFilters builds SearchFilters from request query values. This is
// the only place absence is inferred: empty strings stay absent, a salary of
// "NaN", garbage, or zero stays absent rather than becoming an equals-zero
// predicate, and multi-valued fields accept single or repeated parameters.
func ParseSearchFilters(q url.Values) SearchFilters {
	f := SearchFilters{Limit: DefaultSearchLimit}

	if v := q.Get("location"); v != "" {
		f.Location = &v
	}
	if v := q.Get("dateSincePosted"); v != "" {
		switch w := PostedWindow(v); w {
		case PostedPastDay, PostedPastWeek, PostedPastMonth:
			f.PostedSince = &w
		}
	}
	f.JobTypes = nonEmpty(q["jobType"])
	f.RemoteFilters = nonEmpty(q["remoteFilter"])
	f.ExperienceLevels = nonEmpty(q["experienceLevel"])

	if v := q.Get("salary"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			f.Salary = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	return f
}

// RawValues re-exposes the filters in the string form the listing source
// expects on its query API.
func (f SearchFilters) RawValues() map[string]string {
	raw := make(map[string]string)
	if f.Location != nil {
		raw["location"] = *f.Location
	}
	if f.PostedSince != nil {
		raw["dateSincePosted"] = string(*f.PostedSince)
	}
	if len(f.JobTypes) > 0 {
		raw["jobType"] = f.JobTypes[0]
	}
	if len(f.RemoteFilters) > 0 {
		raw["remoteFilter"] = f.RemoteFilters[0]
	}
	if f.Salary != nil {
		raw["salary"] = strconv.FormatFloat(*f.Salary, 'f', -1, 64)
	}
	if len(f.ExperienceLevels) > 0 {
		raw["experienceLevel"] = f.ExperienceLevels[0]
	}
	raw["limit"] = strconv.Itoa(f.Limit)
	return raw
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
