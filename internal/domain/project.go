package domain

import "time"

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	Private     bool      `json:"is_private"`
	Billable    bool      `json:"billable"`
	Color       string    `json:"color,omitempty"`
	ClientID    *int64    `json:"client_id,omitempty"`
	At          time.Time `json:"at"` // Last update timestamp from Toggl
}

// ProjectInput is the payload for creating a project.
type ProjectInput struct {
	Name           string  `json:"name"`
	Active         *bool   `json:"active,omitempty"`
	Billable       *bool   `json:"billable,omitempty"`
	ClientID       *int64  `json:"client_id,omitempty"`
	Color          string  `json:"color,omitempty"`
	Private        *bool   `json:"is_private,omitempty"`
	StartDate      string  `json:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty"`
	EstimatedHours *int64  `json:"estimated_hours,omitempty"`
	Template       *bool   `json:"template,omitempty"`
	TemplateID     *int64  `json:"template_id,omitempty"`
}

// ProjectListOptions pages through a workspace's projects.
type ProjectListOptions struct {
	Page       int
	PerPage    int
	ActiveOnly bool
}

// PatchOperation is a JSON-patch style operation used by bulk project updates.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// ProjectColors is the palette Toggl accepts for project colours.
var ProjectColors = []string{
	"#4dc3ff", "#bc85e6", "#df7baa", "#f68d38", "#b27636",
	"#8ab734", "#14a88e", "#268bb5", "#6668b4", "#a4506c",
	"#67412c", "#3c6526", "#094558", "#bc2d07", "#999999",
}

// Workspace is a Toggl workspace.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated Toggl user as returned by /me.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
}
