package domain

import "time"

// Preset is a saved timer configuration referenced by name.
type Preset struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	ProjectName   string   `json:"project_name,omitempty"`
	WorkspaceName string   `json:"workspace_name,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Billable      *bool    `json:"billable,omitempty"`
}

// Frequencies accepted by Schedule.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Schedule describes when a recurring entry should be created. Entries are
// triggered manually or by an external scheduler; nothing here runs on a timer.
type Schedule struct {
	Frequency  string   `json:"frequency"`
	Days       []string `json:"days,omitempty"`
	DayOfMonth int      `json:"day_of_month,omitempty"`
}

// RecurringEntry is a stored recurring time entry configuration.
type RecurringEntry struct {
	ID            string     `json:"id"`
	Description   string     `json:"description"`
	ProjectName   string     `json:"project_name,omitempty"`
	ProjectID     *int64     `json:"project_id,omitempty"`
	WorkspaceName string     `json:"workspace_name,omitempty"`
	WorkspaceID   int64      `json:"workspace_id"`
	Tags          []string   `json:"tags,omitempty"`
	Billable      bool       `json:"billable"`
	Schedule      Schedule   `json:"schedule"`
	DurationSec   int64      `json:"duration"`
	CreatedAt     time.Time  `json:"created_at"`
	LastRun       *time.Time `json:"last_run"`
}
