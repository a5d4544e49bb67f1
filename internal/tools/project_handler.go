package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/usecase"
)

// ProjectHandler serves project and workspace tools.
type ProjectHandler struct {
	log      *slog.Logger
	projects *usecase.ProjectService
}

func NewProjectHandler(log *slog.Logger, p *usecase.ProjectService) *ProjectHandler {
	return &ProjectHandler{log: log, projects: p}
}

func (h *ProjectHandler) RegisterTools(s *server.MCPServer) error {
	addTool(s, h.log, mcp.NewTool("create_project",
		mcp.WithDescription("Create a project in a workspace."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name; default workspace when omitted")),
		mcp.WithBoolean("active", mcp.Description("Active flag, default true")),
		mcp.WithBoolean("billable", mcp.Description("Billable flag")),
		mcp.WithNumber("client_id", mcp.Description("Client id")),
		mcp.WithString("color", mcp.Description("Hex colour from the Toggl palette"), mcp.Enum(domain.ProjectColors...)),
		mcp.WithBoolean("is_private", mcp.Description("Private flag")),
		mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Description("End date, YYYY-MM-DD")),
		mcp.WithNumber("estimated_hours", mcp.Description("Estimated hours")),
		mcp.WithBoolean("template", mcp.Description("Create as a template")),
		mcp.WithNumber("template_id", mcp.Description("Template to create from")),
	), h.handleCreate)

	addTool(s, h.log, mcp.NewTool("delete_project",
		mcp.WithDescription("Delete the project with the given name."),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.handleDelete)

	addTool(s, h.log, mcp.NewTool("update_projects",
		mcp.WithDescription("Apply JSON-patch style operations to several projects at once."),
		mcp.WithArray("project_names", mcp.Required(), mcp.Description("Names of the projects to patch"), mcp.Items(stringList)),
		mcp.WithArray("operations", mcp.Required(), mcp.Description("Operations: op is add, remove or replace; path like /active"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"op":    map[string]any{"type": "string", "enum": []string{"add", "remove", "replace"}},
					"path":  map[string]any{"type": "string"},
					"value": map[string]any{},
				},
				"required": []string{"op", "path"},
			})),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
	), h.handleUpdate)

	addTool(s, h.log, mcp.NewTool("get_all_projects",
		mcp.WithDescription("List every project in a workspace."),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithBoolean("active_only", mcp.Description("Only active projects")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleAll)

	addTool(s, h.log, mcp.NewTool("search_projects",
		mcp.WithDescription("Find projects by name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name or part of it")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Match case-sensitively")),
		mcp.WithBoolean("exact_match", mcp.Description("Require the whole name to match")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleSearch)

	addTool(s, h.log, mcp.NewTool("list_workspaces",
		mcp.WithDescription("List the workspaces of the authenticated user."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleWorkspaces)
	return nil
}

func (h *ProjectHandler) handleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	r := newArgReader(req.GetArguments())
	in := domain.ProjectInput{
		Name:           name,
		Active:         r.boolean("active"),
		Billable:       r.boolean("billable"),
		ClientID:       r.integer("client_id"),
		Color:          req.GetString("color", ""),
		Private:        r.boolean("is_private"),
		StartDate:      req.GetString("start_date", ""),
		EndDate:        req.GetString("end_date", ""),
		EstimatedHours: r.integer("estimated_hours"),
		Template:       r.boolean("template"),
		TemplateID:     r.integer("template_id"),
	}
	if r.err != nil {
		return errorResult(r.err, nil)
	}
	p, err := h.projects.Create(ctx, req.GetString("workspace_name", ""), in)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(p)
}

func (h *ProjectHandler) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("project_name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	st, err := h.projects.Delete(ctx, name, req.GetString("workspace_name", ""))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Project deleted", "project": name, "result": st})
}

func (h *ProjectHandler) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var (
		names []string
		ops   []domain.PatchOperation
	)
	if _, err := decodeArg(args, "project_names", &names); err != nil {
		return errorResult(err, nil)
	}
	if _, err := decodeArg(args, "operations", &ops); err != nil {
		return errorResult(err, nil)
	}
	raw, err := h.projects.Update(ctx, req.GetString("workspace_name", ""), names, ops)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"updated_projects": names, "result": raw})
}

func (h *ProjectHandler) handleAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := h.projects.All(ctx, req.GetString("workspace_name", ""), req.GetBool("active_only", false))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"count": len(projects), "projects": projects})
}

func (h *ProjectHandler) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	projects, err := h.projects.Search(ctx, req.GetString("workspace_name", ""), query,
		req.GetBool("case_sensitive", false), req.GetBool("exact_match", false))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"count": len(projects), "projects": projects})
}

func (h *ProjectHandler) handleWorkspaces(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := h.projects.Workspaces(ctx)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"workspaces": ws})
}
