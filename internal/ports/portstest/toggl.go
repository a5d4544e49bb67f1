// Package portstest provides test doubles for the ports interfaces.
package portstest

import (
	"context"
	"encoding/json"
	"errors"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

var errNotStubbed = errors.New("portstest: method not stubbed")

// Toggl is a ports.TogglClient whose methods delegate to the func fields.
// Unset fields return an error.
type Toggl struct {
	ListTimeEntriesFn  func(ctx context.Context) ([]domain.TimeEntry, error)
	CurrentTimeEntryFn func(ctx context.Context) (*domain.TimeEntry, error)
	CreateTimeEntryFn  func(ctx context.Context, workspaceID int64, in domain.TimeEntryInput) (domain.TimeEntry, error)
	UpdateTimeEntryFn  func(ctx context.Context, workspaceID, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error)
	StopTimeEntryFn    func(ctx context.Context, workspaceID, id int64) (domain.TimeEntry, error)
	DeleteTimeEntryFn  func(ctx context.Context, workspaceID, id int64) (int, error)
	MeFn               func(ctx context.Context) (domain.User, error)
	ListWorkspacesFn   func(ctx context.Context) ([]domain.Workspace, error)
	ListProjectsFn     func(ctx context.Context, workspaceID int64, opts domain.ProjectListOptions) ([]domain.Project, error)
	CreateProjectFn    func(ctx context.Context, workspaceID int64, in domain.ProjectInput) (domain.Project, error)
	DeleteProjectFn    func(ctx context.Context, workspaceID, id int64) (int, error)
	PatchProjectsFn    func(ctx context.Context, workspaceID int64, ids []int64, ops []domain.PatchOperation) (json.RawMessage, error)
}

// compile-time check
var _ ports.TogglClient = (*Toggl)(nil)

func (t *Toggl) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	if t.ListTimeEntriesFn == nil {
		return nil, errNotStubbed
	}
	return t.ListTimeEntriesFn(ctx)
}

func (t *Toggl) CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error) {
	if t.CurrentTimeEntryFn == nil {
		return nil, errNotStubbed
	}
	return t.CurrentTimeEntryFn(ctx)
}

func (t *Toggl) CreateTimeEntry(ctx context.Context, workspaceID int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	if t.CreateTimeEntryFn == nil {
		return domain.TimeEntry{}, errNotStubbed
	}
	return t.CreateTimeEntryFn(ctx, workspaceID, in)
}

func (t *Toggl) UpdateTimeEntry(ctx context.Context, workspaceID, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	if t.UpdateTimeEntryFn == nil {
		return domain.TimeEntry{}, errNotStubbed
	}
	return t.UpdateTimeEntryFn(ctx, workspaceID, id, in)
}

func (t *Toggl) StopTimeEntry(ctx context.Context, workspaceID, id int64) (domain.TimeEntry, error) {
	if t.StopTimeEntryFn == nil {
		return domain.TimeEntry{}, errNotStubbed
	}
	return t.StopTimeEntryFn(ctx, workspaceID, id)
}

func (t *Toggl) DeleteTimeEntry(ctx context.Context, workspaceID, id int64) (int, error) {
	if t.DeleteTimeEntryFn == nil {
		return 0, errNotStubbed
	}
	return t.DeleteTimeEntryFn(ctx, workspaceID, id)
}

func (t *Toggl) Me(ctx context.Context) (domain.User, error) {
	if t.MeFn == nil {
		return domain.User{}, errNotStubbed
	}
	return t.MeFn(ctx)
}

func (t *Toggl) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	if t.ListWorkspacesFn == nil {
		return nil, errNotStubbed
	}
	return t.ListWorkspacesFn(ctx)
}

func (t *Toggl) ListProjects(ctx context.Context, workspaceID int64, opts domain.ProjectListOptions) ([]domain.Project, error) {
	if t.ListProjectsFn == nil {
		return nil, errNotStubbed
	}
	return t.ListProjectsFn(ctx, workspaceID, opts)
}

func (t *Toggl) CreateProject(ctx context.Context, workspaceID int64, in domain.ProjectInput) (domain.Project, error) {
	if t.CreateProjectFn == nil {
		return domain.Project{}, errNotStubbed
	}
	return t.CreateProjectFn(ctx, workspaceID, in)
}

func (t *Toggl) DeleteProject(ctx context.Context, workspaceID, id int64) (int, error) {
	if t.DeleteProjectFn == nil {
		return 0, errNotStubbed
	}
	return t.DeleteProjectFn(ctx, workspaceID, id)
}

func (t *Toggl) PatchProjects(ctx context.Context, workspaceID int64, ids []int64, ops []domain.PatchOperation) (json.RawMessage, error) {
	if t.PatchProjectsFn == nil {
		return nil, errNotStubbed
	}
	return t.PatchProjectsFn(ctx, workspaceID, ids, ops)
}

// Entries returns a ListTimeEntriesFn serving a fixed slice.
func Entries(entries ...domain.TimeEntry) func(context.Context) ([]domain.TimeEntry, error) {
	return func(context.Context) ([]domain.TimeEntry, error) {
		out := make([]domain.TimeEntry, len(entries))
		copy(out, entries)
		return out, nil
	}
}
