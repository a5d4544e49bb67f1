package ports

import (
	"context"
	"encoding/json"

	"toggl-mcp/internal/domain"
)

// TogglClient is the record backend. Every method is a single request; the
// core never caches what it returns.
type TogglClient interface {
	ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error)
	// CurrentTimeEntry returns nil when no timer is running.
	CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, workspaceID int64, in domain.TimeEntryInput) (domain.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, workspaceID, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error)
	StopTimeEntry(ctx context.Context, workspaceID, id int64) (domain.TimeEntry, error)
	// DeleteTimeEntry returns the HTTP status of a successful delete.
	DeleteTimeEntry(ctx context.Context, workspaceID, id int64) (int, error)

	Me(ctx context.Context) (domain.User, error)
	ListWorkspaces(ctx context.Context) ([]domain.Workspace, error)

	ListProjects(ctx context.Context, workspaceID int64, opts domain.ProjectListOptions) ([]domain.Project, error)
	CreateProject(ctx context.Context, workspaceID int64, in domain.ProjectInput) (domain.Project, error)
	DeleteProject(ctx context.Context, workspaceID, id int64) (int, error)
	PatchProjects(ctx context.Context, workspaceID int64, ids []int64, ops []domain.PatchOperation) (json.RawMessage, error)
}

// PresetStore persists timer presets and recurring entry configurations.
// Get and Delete return a domain.CodeNotFound error for unknown keys.
type PresetStore interface {
	SavePreset(ctx context.Context, p domain.Preset) error
	GetPreset(ctx context.Context, name string) (domain.Preset, error)
	ListPresets(ctx context.Context) ([]domain.Preset, error)
	DeletePreset(ctx context.Context, name string) error

	SaveRecurring(ctx context.Context, r domain.RecurringEntry) error
	GetRecurring(ctx context.Context, id string) (domain.RecurringEntry, error)
	ListRecurring(ctx context.Context) ([]domain.RecurringEntry, error)
	DeleteRecurring(ctx context.Context, id string) error
}
