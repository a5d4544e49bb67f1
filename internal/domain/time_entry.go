package domain

// CreatedWith identifies this client to Toggl on every write.
const CreatedWith = "toggl_mcp_server"

// TimeEntry represents a Toggl time entry in the domain.
// Start and Stop hold canonical UTC strings (2006-01-02T15:04:05.000Z) so
// that they order lexically.
type TimeEntry struct {
	ID          int64    `json:"id,omitempty"`
	Description string   `json:"description,omitempty"`
	WorkspaceID int64    `json:"workspace_id"`
	ProjectID   *int64   `json:"project_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Start       string   `json:"start,omitempty"`
	Stop        string   `json:"stop,omitempty"`
	Duration    *int64   `json:"duration,omitempty"` // Negative means running in Toggl API semantics
	Billable    bool     `json:"billable"`
	CreatedWith string   `json:"created_with,omitempty"`

	// Display-only renderings of Start/Stop in the local timezone.
	StartLocal string `json:"start_local,omitempty"`
	StopLocal  string `json:"stop_local,omitempty"`
}

// Running reports whether the entry carries the negative duration sentinel.
func (e TimeEntry) Running() bool {
	return e.Duration != nil && *e.Duration < 0
}

// StringField returns the named string-valued field, if the entry has one.
// Non-string fields (tags, ids, duration) are never returned.
func (e TimeEntry) StringField(name string) (string, bool) {
	switch name {
	case "description":
		return e.Description, e.Description != ""
	case "start":
		return e.Start, e.Start != ""
	case "stop":
		return e.Stop, e.Stop != ""
	case "created_with":
		return e.CreatedWith, e.CreatedWith != ""
	case "start_local":
		return e.StartLocal, e.StartLocal != ""
	case "stop_local":
		return e.StopLocal, e.StopLocal != ""
	}
	return "", false
}

// TimeEntryInput is the write payload for creating or updating an entry.
// Nil fields are left out of the request body, which gives PUT partial
// update semantics on the Toggl side. A non-nil empty value is sent and
// clears the field.
type TimeEntryInput struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	Start       *string   `json:"start,omitempty"`
	Stop        *string   `json:"stop,omitempty"`
	Duration    *int64    `json:"duration,omitempty"`
	Billable    *bool     `json:"billable,omitempty"`
}

// TimeEntryUpdate is one item of a bulk update. ID is required.
type TimeEntryUpdate struct {
	ID *int64 `json:"id"`
	TimeEntryInput
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
