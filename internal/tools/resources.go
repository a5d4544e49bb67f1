package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
)

const (
	uriTimeEntries      = "toggl://me/time_entries"
	uriWorkspaces       = "toggl://me/workspaces"
	uriProjectsTemplate = "toggl://workspaces/{workspace_id}/projects"
)

// ResourceHandler exposes read-only listings as MCP resources.
type ResourceHandler struct {
	log      *slog.Logger
	toggl    ports.TogglClient
	resolver *resolve.Resolver
	conv     *timeconv.Converter
}

func NewResourceHandler(log *slog.Logger, t ports.TogglClient, r *resolve.Resolver, conv *timeconv.Converter) *ResourceHandler {
	return &ResourceHandler{log: log, toggl: t, resolver: r, conv: conv}
}

func (h *ResourceHandler) RegisterResources(s *server.MCPServer) error {
	s.AddResource(mcp.NewResource(uriTimeEntries, "Time entries",
		mcp.WithResourceDescription("Recent time entries of the authenticated user, with local times"),
		mcp.WithMIMEType("application/json"),
	), h.readTimeEntries)

	s.AddResource(mcp.NewResource(uriWorkspaces, "Workspaces",
		mcp.WithResourceDescription("Workspaces of the authenticated user"),
		mcp.WithMIMEType("application/json"),
	), h.readWorkspaces)

	s.AddResourceTemplate(mcp.NewResourceTemplate(uriProjectsTemplate, "Workspace projects",
		mcp.WithTemplateDescription("Every project of a workspace"),
		mcp.WithTemplateMIMEType("application/json"),
	), h.readProjects)
	return nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(b)},
	}, nil
}

func (h *ResourceHandler) readTimeEntries(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.toggl.ListTimeEntries(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, h.conv.EnrichAll(entries))
}

func (h *ResourceHandler) readWorkspaces(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, err := h.toggl.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, ws)
}

// workspaceFromURI extracts the id from toggl://workspaces/<id>/projects.
func workspaceFromURI(uri string) (int64, error) {
	rest, ok := strings.CutPrefix(uri, "toggl://workspaces/")
	if !ok {
		return 0, domain.Errorf(domain.CodeValidation, "unexpected resource uri %q", uri)
	}
	rest, ok = strings.CutSuffix(rest, "/projects")
	if !ok {
		return 0, domain.Errorf(domain.CodeValidation, "unexpected resource uri %q", uri)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Errorf(domain.CodeValidation, "invalid workspace id %q", rest)
	}
	return id, nil
}

func (h *ResourceHandler) readProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, err := workspaceFromURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	projects, err := h.resolver.AllProjects(ctx, ws, 0, false)
	if err != nil {
		h.log.Warn("read projects resource failed", slog.Int64("workspace_id", ws), slog.String("error", err.Error()))
		return nil, err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return jsonContents(req.Params.URI, projects)
}
