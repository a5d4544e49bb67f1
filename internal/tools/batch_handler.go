package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
	"toggl-mcp/internal/usecase"
)

// BatchHandler serves the bulk entry tools. Item payloads are decoded
// strictly so a misspelled field fails the call instead of being dropped.
type BatchHandler struct {
	log      *slog.Logger
	batch    *usecase.BatchMutator
	resolver *resolve.Resolver
	conv     *timeconv.Converter
}

func NewBatchHandler(log *slog.Logger, b *usecase.BatchMutator, r *resolve.Resolver, conv *timeconv.Converter) *BatchHandler {
	return &BatchHandler{log: log, batch: b, resolver: r, conv: conv}
}

type bulkResponse[T any] struct {
	domain.BatchResult[T]
	Conversions []usecase.DebugInfo `json:"conversions,omitempty"`
}

var entryItem = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
		"tags":        map[string]any{"type": "array", "items": stringList},
		"project_id":  map[string]any{"type": "number"},
		"start":       map[string]any{"type": "string"},
		"stop":        map[string]any{"type": "string"},
		"duration":    map[string]any{"type": "number"},
		"billable":    map[string]any{"type": "boolean"},
	},
}

func withID(item map[string]any) map[string]any {
	props := map[string]any{"id": map[string]any{"type": "number"}}
	for k, v := range item["properties"].(map[string]any) {
		props[k] = v
	}
	return map[string]any{"type": "object", "properties": props, "required": []string{"id"}}
}

func (h *BatchHandler) RegisterTools(s *server.MCPServer) error {
	addTool(s, h.log, mcp.NewTool("bulk_create_time_entries",
		mcp.WithDescription("Create several entries. Failures are reported per item and never stop the batch. Times are local."),
		mcp.WithArray("entries", mcp.Required(), mcp.Description("Entries to create"), mcp.Items(entryItem)),
		mcp.WithString("workspace_name", mcp.Description("Workspace name; default workspace when omitted")),
	), h.handleBulkCreate)

	addTool(s, h.log, mcp.NewTool("bulk_update_time_entries",
		mcp.WithDescription("Update several entries by id. Only the fields present on an item are changed."),
		mcp.WithArray("entries", mcp.Required(), mcp.Description("Updates, each with an id"), mcp.Items(withID(entryItem))),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
	), h.handleBulkUpdate)

	addTool(s, h.log, mcp.NewTool("bulk_delete_time_entries",
		mcp.WithDescription("Delete several entries by id."),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Entry ids"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.handleBulkDelete)
	return nil
}

func (h *BatchHandler) workspace(ctx context.Context, req mcp.CallToolRequest) (int64, error) {
	return h.resolver.WorkspaceID(ctx, req.GetString("workspace_name", ""))
}

func (h *BatchHandler) handleBulkCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var items []domain.TimeEntryInput
	ok, err := decodeArg(req.GetArguments(), "entries", &items)
	if err != nil {
		return errorResult(err, nil)
	}
	if !ok {
		return invalidArgs("entries is required")
	}
	ws, err := h.workspace(ctx, req)
	if err != nil {
		return errorResult(err, nil)
	}

	conversions := make([]usecase.DebugInfo, len(items))
	for i := range items {
		items[i], conversions[i] = usecase.Localize(h.conv, items[i])
	}
	res, err := h.batch.BulkCreate(ctx, ws, items)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(bulkResponse[domain.TimeEntry]{BatchResult: res, Conversions: conversions})
}

func (h *BatchHandler) handleBulkUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var items []domain.TimeEntryUpdate
	ok, err := decodeArg(req.GetArguments(), "entries", &items)
	if err != nil {
		return errorResult(err, nil)
	}
	if !ok {
		return invalidArgs("entries is required")
	}
	ws, err := h.workspace(ctx, req)
	if err != nil {
		return errorResult(err, nil)
	}

	conversions := make([]usecase.DebugInfo, len(items))
	for i := range items {
		items[i].TimeEntryInput, conversions[i] = usecase.Localize(h.conv, items[i].TimeEntryInput)
		if items[i].ID != nil {
			conversions[i].TimeEntryID = *items[i].ID
		}
	}
	res, err := h.batch.BulkUpdate(ctx, ws, items)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(bulkResponse[domain.TimeEntry]{BatchResult: res, Conversions: conversions})
}

func (h *BatchHandler) handleBulkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ids []int64
	ok, err := decodeArg(req.GetArguments(), "ids", &ids)
	if err != nil {
		return errorResult(err, nil)
	}
	if !ok {
		return invalidArgs("ids is required")
	}
	ws, err := h.workspace(ctx, req)
	if err != nil {
		return errorResult(err, nil)
	}
	res, err := h.batch.BulkDelete(ctx, ws, ids)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(res)
}
