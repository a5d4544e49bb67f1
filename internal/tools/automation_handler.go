package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/usecase"
)

// AutomationHandler serves preset and recurring entry tools.
type AutomationHandler struct {
	log  *slog.Logger
	auto *usecase.AutomationService
}

func NewAutomationHandler(log *slog.Logger, a *usecase.AutomationService) *AutomationHandler {
	return &AutomationHandler{log: log, auto: a}
}

func (h *AutomationHandler) RegisterTools(s *server.MCPServer) error {
	addTool(s, h.log, mcp.NewTool("save_timer_preset",
		mcp.WithDescription("Save a named timer configuration; an existing preset with the same name is replaced."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
		mcp.WithString("description", mcp.Description("Entry description")),
		mcp.WithString("project_name", mcp.Description("Project name")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithArray("tags", mcp.Description("Tags"), mcp.Items(stringList)),
		mcp.WithBoolean("billable", mcp.Description("Billable flag")),
	), h.handleSavePreset)

	addTool(s, h.log, mcp.NewTool("get_timer_preset",
		mcp.WithDescription("Return a saved preset."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleGetPreset)

	addTool(s, h.log, mcp.NewTool("list_timer_presets",
		mcp.WithDescription("List saved presets."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleListPresets)

	addTool(s, h.log, mcp.NewTool("delete_timer_preset",
		mcp.WithDescription("Delete a saved preset."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.handleDeletePreset)

	addTool(s, h.log, mcp.NewTool("start_timer_with_preset",
		mcp.WithDescription("Start a running timer configured by a preset."),
		mcp.WithString("preset_name", mcp.Required(), mcp.Description("Preset name")),
	), h.handleStartPreset)

	addTool(s, h.log, mcp.NewTool("create_recurring_entry",
		mcp.WithDescription("Store a recurring entry configuration. Entries are created only when run_recurring_entry is called."),
		mcp.WithString("description", mcp.Required(), mcp.Description("Entry description")),
		mcp.WithObject("schedule", mcp.Required(), mcp.Description("frequency daily|weekly|monthly; days for weekly; day_of_month for monthly"),
			mcp.Properties(map[string]any{
				"frequency":    map[string]any{"type": "string", "enum": []string{domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly}},
				"days":         map[string]any{"type": "array", "items": stringList},
				"day_of_month": map[string]any{"type": "number"},
			})),
		mcp.WithString("project_name", mcp.Description("Project name")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithArray("tags", mcp.Description("Tags"), mcp.Items(stringList)),
		mcp.WithBoolean("billable", mcp.Description("Billable flag")),
		mcp.WithNumber("duration_minutes", mcp.Description("Entry length in minutes, default 60")),
	), h.handleCreateRecurring)

	addTool(s, h.log, mcp.NewTool("list_recurring_entries",
		mcp.WithDescription("List recurring entry configurations."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleListRecurring)

	addTool(s, h.log, mcp.NewTool("get_recurring_entry",
		mcp.WithDescription("Return one recurring entry configuration."),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("Recurring entry id")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleGetRecurring)

	addTool(s, h.log, mcp.NewTool("delete_recurring_entry",
		mcp.WithDescription("Delete a recurring entry configuration."),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("Recurring entry id")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.handleDeleteRecurring)

	addTool(s, h.log, mcp.NewTool("run_recurring_entry",
		mcp.WithDescription("Create a time entry from a recurring configuration now. start_time and end_time are optional local times."),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("Recurring entry id")),
		mcp.WithString("start_time", mcp.Description("Local start time, default now")),
		mcp.WithString("end_time", mcp.Description("Local end time, default start plus the configured duration")),
	), h.handleRunRecurring)
	return nil
}

func (h *AutomationHandler) handleSavePreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	r := newArgReader(req.GetArguments())
	tags, billable := r.values("tags"), r.boolean("billable")
	if r.err != nil {
		return errorResult(r.err, nil)
	}
	p, err := h.auto.SavePreset(ctx, domain.Preset{
		Name:          name,
		Description:   req.GetString("description", ""),
		ProjectName:   req.GetString("project_name", ""),
		WorkspaceName: req.GetString("workspace_name", ""),
		Tags:          tags,
		Billable:      billable,
	})
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Preset '" + name + "' saved", "preset": p})
}

func (h *AutomationHandler) handleGetPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	p, err := h.auto.GetPreset(ctx, name)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(p)
}

func (h *AutomationHandler) handleListPresets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	presets, err := h.auto.ListPresets(ctx)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"count": len(presets), "presets": presets})
}

func (h *AutomationHandler) handleDeletePreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	if err := h.auto.DeletePreset(ctx, name); err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Preset '" + name + "' deleted"})
}

func (h *AutomationHandler) handleStartPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	res, err := h.auto.StartPreset(ctx, name)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(res)
}

func (h *AutomationHandler) handleCreateRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	args := req.GetArguments()
	var sc domain.Schedule
	if _, err := decodeArg(args, "schedule", &sc); err != nil {
		return errorResult(err, nil)
	}
	ar := newArgReader(args)
	tags := ar.values("tags")
	if ar.err != nil {
		return errorResult(ar.err, nil)
	}
	r, err := h.auto.CreateRecurring(ctx, usecase.RecurringRequest{
		Description:   description,
		ProjectName:   req.GetString("project_name", ""),
		WorkspaceName: req.GetString("workspace_name", ""),
		Tags:          tags,
		Billable:      req.GetBool("billable", false),
		Schedule:      sc,
		DurationSec:   int64(req.GetInt("duration_minutes", 60)) * 60,
	})
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Recurring entry created", "recurring_entry": r})
}

func (h *AutomationHandler) handleListRecurring(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.auto.ListRecurring(ctx)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"count": len(list), "recurring_entries": list})
}

func (h *AutomationHandler) handleGetRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	r, err := h.auto.GetRecurring(ctx, id)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(r)
}

func (h *AutomationHandler) handleDeleteRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	if err := h.auto.DeleteRecurring(ctx, id); err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Recurring entry '" + id + "' deleted"})
}

func (h *AutomationHandler) handleRunRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	res, err := h.auto.RunRecurring(ctx, id, req.GetString("start_time", ""), req.GetString("end_time", ""))
	if err != nil {
		return errorResult(err, map[string]any{"debug_info": res.Debug})
	}
	return jsonResult(res)
}
