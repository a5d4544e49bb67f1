package domain

// DateRange is a half-open [Start, End) UTC interval of whole local days,
// both ends in canonical UTC format.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateBounds is a closed interval used by search. Either end may be empty,
// meaning unbounded on that side.
type DateBounds struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// SearchCriteria is a set of optional filters. A zero value matches everything.
type SearchCriteria struct {
	Text          string      `json:"text,omitempty"`
	CaseSensitive bool        `json:"case_sensitive,omitempty"`
	ExactMatch    bool        `json:"exact_match,omitempty"`
	ProjectIDs    []int64     `json:"project_ids,omitempty"`
	Dates         *DateBounds `json:"date_range,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
	MinDuration   *int64      `json:"min_duration,omitempty"`
	MaxDuration   *int64      `json:"max_duration,omitempty"`
	Billable      *bool       `json:"billable,omitempty"`
	WorkspaceID   *int64      `json:"workspace_id,omitempty"`
}

// HasDurationBounds reports whether either duration bound is set.
func (c SearchCriteria) HasDurationBounds() bool {
	return c.MinDuration != nil || c.MaxDuration != nil
}
