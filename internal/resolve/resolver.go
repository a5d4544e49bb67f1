// Package resolve maps human-friendly names to Toggl ids.
package resolve

import (
	"context"
	"strings"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

const projectPageSize = 50

// Resolver looks names up by linear scan over backend listings.
// DefaultWorkspaceID, when non-zero, overrides the /me default.
type Resolver struct {
	Toggl              ports.TogglClient
	DefaultWorkspaceID int64
}

// WorkspaceID resolves name, or the default workspace when name is empty.
func (r *Resolver) WorkspaceID(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return r.defaultWorkspace(ctx)
	}
	workspaces, err := r.Toggl.ListWorkspaces(ctx)
	if err != nil {
		return 0, domain.Wrap(domain.CodeResolution, err, "Error fetching workspaces")
	}
	for _, w := range workspaces {
		if w.Name == name {
			return w.ID, nil
		}
	}
	return 0, domain.Errorf(domain.CodeResolution, "Workspace with name '%s' doesn't exist", name)
}

func (r *Resolver) defaultWorkspace(ctx context.Context) (int64, error) {
	if r.DefaultWorkspaceID != 0 {
		return r.DefaultWorkspaceID, nil
	}
	me, err := r.Toggl.Me(ctx)
	if err != nil {
		return 0, domain.Wrap(domain.CodeResolution, err, "Failed to fetch default workspace ID")
	}
	if me.DefaultWorkspaceID == 0 {
		return 0, domain.Errorf(domain.CodeResolution, "No default workspace ID found for this user")
	}
	return me.DefaultWorkspaceID, nil
}

// AllProjects pages through every project in a workspace.
func (r *Resolver) AllProjects(ctx context.Context, workspaceID int64, pageSize int, activeOnly bool) ([]domain.Project, error) {
	if pageSize <= 0 {
		pageSize = projectPageSize
	}
	var all []domain.Project
	for page := 1; ; page++ {
		batch, err := r.Toggl.ListProjects(ctx, workspaceID, domain.ProjectListOptions{
			Page:       page,
			PerPage:    pageSize,
			ActiveOnly: activeOnly,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// SearchProjects filters a workspace's projects by name.
func (r *Resolver) SearchProjects(ctx context.Context, workspaceID int64, query string, caseSensitive, exact bool) ([]domain.Project, error) {
	projects, err := r.AllProjects(ctx, workspaceID, projectPageSize, false)
	if err != nil {
		return nil, err
	}
	q := query
	if !caseSensitive {
		q = strings.ToLower(q)
	}
	out := []domain.Project{}
	for _, p := range projects {
		name := p.Name
		if !caseSensitive {
			name = strings.ToLower(name)
		}
		if (exact && name == q) || (!exact && strings.Contains(name, q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ProjectID returns the first project whose name equals name, ignoring case.
func (r *Resolver) ProjectID(ctx context.Context, workspaceID int64, name string) (int64, error) {
	matches, err := r.SearchProjects(ctx, workspaceID, name, false, true)
	if err != nil {
		return 0, domain.Wrap(domain.CodeResolution, err, "Error searching for project")
	}
	if len(matches) == 0 {
		return 0, domain.Errorf(domain.CodeResolution, "Project with name '%s' doesn't exist", name)
	}
	return matches[0].ID, nil
}

// TimeEntryID returns the id of the first entry whose description is exactly description.
func (r *Resolver) TimeEntryID(ctx context.Context, description string) (int64, error) {
	entries, err := r.Toggl.ListTimeEntries(ctx)
	if err != nil {
		return 0, domain.Wrap(domain.CodeResolution, err, "Error fetching time entries")
	}
	for _, e := range entries {
		if e.Description == description {
			return e.ID, nil
		}
	}
	return 0, domain.Errorf(domain.CodeResolution, "Time entry with name '%s' doesn't exist", description)
}
