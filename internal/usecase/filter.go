package usecase

import (
	"slices"
	"strings"

	"toggl-mcp/internal/domain"
)

// Matches reports whether e passes every filter set in c. Unset filters
// (nil pointers, empty slices, empty text) match everything.
func Matches(e domain.TimeEntry, c domain.SearchCriteria) bool {
	return matchText(e, c) &&
		matchProject(e, c) &&
		matchDates(e, c) &&
		matchTags(e, c) &&
		matchDuration(e, c) &&
		matchBillable(e, c) &&
		matchWorkspace(e, c)
}

func matchText(e domain.TimeEntry, c domain.SearchCriteria) bool {
	if c.Text == "" {
		return true
	}
	if e.Description == "" {
		return false
	}
	desc, text := e.Description, c.Text
	if !c.CaseSensitive {
		desc, text = strings.ToLower(desc), strings.ToLower(text)
	}
	if c.ExactMatch {
		return desc == text
	}
	return strings.Contains(desc, text)
}

func matchProject(e domain.TimeEntry, c domain.SearchCriteria) bool {
	if len(c.ProjectIDs) == 0 {
		return true
	}
	if e.ProjectID == nil {
		return false
	}
	return slices.Contains(c.ProjectIDs, *e.ProjectID)
}

// Start is compared lexically; both sides are canonical UTC strings.
func matchDates(e domain.TimeEntry, c domain.SearchCriteria) bool {
	if c.Dates == nil || (c.Dates.Start == "" && c.Dates.End == "") {
		return true
	}
	if e.Start == "" {
		return false
	}
	if c.Dates.Start != "" && e.Start < c.Dates.Start {
		return false
	}
	if c.Dates.End != "" && e.Start > c.Dates.End {
		return false
	}
	return true
}

// Any shared tag is enough.
func matchTags(e domain.TimeEntry, c domain.SearchCriteria) bool {
	if len(c.Tags) == 0 {
		return true
	}
	for _, t := range c.Tags {
		if slices.Contains(e.Tags, t) {
			return true
		}
	}
	return false
}

// Running entries always pass; their duration is not comparable yet.
func matchDuration(e domain.TimeEntry, c domain.SearchCriteria) bool {
	if !c.HasDurationBounds() {
		return true
	}
	if e.Duration == nil {
		return false
	}
	d := *e.Duration
	if d < 0 {
		return true
	}
	if c.MinDuration != nil && d < *c.MinDuration {
		return false
	}
	if c.MaxDuration != nil && d > *c.MaxDuration {
		return false
	}
	return true
}

func matchBillable(e domain.TimeEntry, c domain.SearchCriteria) bool {
	return c.Billable == nil || e.Billable == *c.Billable
}

func matchWorkspace(e domain.TimeEntry, c domain.SearchCriteria) bool {
	return c.WorkspaceID == nil || e.WorkspaceID == *c.WorkspaceID
}
