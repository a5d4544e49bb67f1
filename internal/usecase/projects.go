package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
)

// ProjectService manages projects addressed by name.
type ProjectService struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Resolver *resolve.Resolver
}

var patchOps = []string{"add", "remove", "replace"}

// Create creates a project in the named workspace, or the default one.
func (s *ProjectService) Create(ctx context.Context, workspaceName string, in domain.ProjectInput) (domain.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Project{}, domain.Errorf(domain.CodeValidation, "project name is required")
	}
	if in.Color != "" && !slices.Contains(domain.ProjectColors, strings.ToLower(in.Color)) {
		return domain.Project{}, domain.Errorf(domain.CodeValidation,
			"color %q is not a Toggl project color; use one of %s", in.Color, strings.Join(domain.ProjectColors, ", "))
	}
	in.Color = strings.ToLower(in.Color)
	if in.Active == nil {
		in.Active = domain.Ptr(true)
	}
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := s.Toggl.CreateProject(ctx, ws, in)
	if err != nil {
		return domain.Project{}, err
	}
	s.Log.Info("project created", slog.Int64("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// Delete deletes the project with the given name.
func (s *ProjectService) Delete(ctx context.Context, name, workspaceName string) (domain.DeleteStatus, error) {
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return domain.DeleteStatus{}, err
	}
	id, err := s.Resolver.ProjectID(ctx, ws, name)
	if err != nil {
		return domain.DeleteStatus{}, err
	}
	status, err := s.Toggl.DeleteProject(ctx, ws, id)
	if err != nil {
		return domain.DeleteStatus{}, err
	}
	s.Log.Info("project deleted", slog.Int64("id", id))
	return domain.DeleteStatus{ID: id, Status: status}, nil
}

// Update applies ops to every named project in one request. All names must
// resolve before anything is sent.
func (s *ProjectService) Update(ctx context.Context, workspaceName string, names []string, ops []domain.PatchOperation) (json.RawMessage, error) {
	if len(ops) == 0 {
		return nil, domain.Errorf(domain.CodeValidation, "no operations provided for update")
	}
	if len(names) == 0 {
		return nil, domain.Errorf(domain.CodeValidation, "no project names provided for update")
	}
	for _, op := range ops {
		if !slices.Contains(patchOps, op.Op) {
			return nil, domain.Errorf(domain.CodeValidation, "unsupported patch op %q", op.Op)
		}
		if op.Path == "" {
			return nil, domain.Errorf(domain.CodeValidation, "patch op %q needs a path", op.Op)
		}
	}
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := s.Resolver.ProjectID(ctx, ws, name)
		if err != nil {
			return nil, domain.Wrap(domain.CodeResolution, err, "Error with project '"+name+"'")
		}
		ids = append(ids, id)
	}
	return s.Toggl.PatchProjects(ctx, ws, ids, ops)
}

// All lists every project in the workspace.
func (s *ProjectService) All(ctx context.Context, workspaceName string, activeOnly bool) ([]domain.Project, error) {
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	projects, err := s.Resolver.AllProjects(ctx, ws, 0, activeOnly)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// Search filters the workspace's projects by name.
func (s *ProjectService) Search(ctx context.Context, workspaceName, query string, caseSensitive, exact bool) ([]domain.Project, error) {
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	return s.Resolver.SearchProjects(ctx, ws, query, caseSensitive, exact)
}

func (s *ProjectService) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	return s.Toggl.ListWorkspaces(ctx)
}
