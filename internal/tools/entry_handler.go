package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/timeconv"
	"toggl-mcp/internal/usecase"
)

// EntryHandler serves the single time entry tools and the range query.
type EntryHandler struct {
	log     *slog.Logger
	entries *usecase.TimeEntryService
	workCtx *usecase.WorkContextUseCase
	conv    *timeconv.Converter
}

func NewEntryHandler(log *slog.Logger, entries *usecase.TimeEntryService, wc *usecase.WorkContextUseCase, conv *timeconv.Converter) *EntryHandler {
	return &EntryHandler{log: log, entries: entries, workCtx: wc, conv: conv}
}

// entryInput reads the optional writable fields shared by create and update.
// A field is set whenever its key is present, even when empty.
func entryInput(args map[string]any) (domain.TimeEntryInput, error) {
	r := newArgReader(args)
	in := domain.TimeEntryInput{
		Description: r.str("description"),
		Tags:        r.list("tags"),
		ProjectID:   r.integer("project_id"),
		Start:       r.str("start"),
		Stop:        r.str("stop"),
		Duration:    r.integer("duration"),
		Billable:    r.boolean("billable"),
	}
	return in, r.err
}

var stringList = map[string]any{"type": "string"}

func (h *EntryHandler) RegisterTools(s *server.MCPServer) error {
	addTool(s, h.log, mcp.NewTool("new_time_entry",
		mcp.WithDescription("Create a time entry. Without start a running timer is started. start and stop are local wall-clock times such as 2025-06-10T09:00:00."),
		mcp.WithString("description", mcp.Description("What the entry is about")),
		mcp.WithArray("tags", mcp.Description("Tag names"), mcp.Items(stringList)),
		mcp.WithString("project_name", mcp.Description("Project to attach, resolved by name")),
		mcp.WithString("start", mcp.Description("Local start time")),
		mcp.WithString("stop", mcp.Description("Local stop time")),
		mcp.WithNumber("duration", mcp.Description("Duration in seconds; -1 for a running entry")),
		mcp.WithBoolean("billable", mcp.Description("Billable flag")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name; default workspace when omitted")),
	), h.handleNewEntry)

	addTool(s, h.log, mcp.NewTool("stopping_time_entry",
		mcp.WithDescription("Stop the time entry with the given description."),
		mcp.WithString("time_entry_name", mcp.Required(), mcp.Description("Exact description of the entry")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
	), h.handleStop)

	addTool(s, h.log, mcp.NewTool("delete_time_entry",
		mcp.WithDescription("Delete the time entry with the given description."),
		mcp.WithString("time_entry_name", mcp.Required(), mcp.Description("Exact description of the entry")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.handleDelete)

	addTool(s, h.log, mcp.NewTool("get_current_time_entry",
		mcp.WithDescription("Return the running time entry, if any, with local times."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleCurrent)

	addTool(s, h.log, mcp.NewTool("updating_time_entry",
		mcp.WithDescription("Update fields of the time entry with the given description. Only the fields passed are changed."),
		mcp.WithString("time_entry_name", mcp.Required(), mcp.Description("Exact description of the entry to update")),
		mcp.WithString("workspace_name", mcp.Description("Workspace name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithArray("tags", mcp.Description("Replacement tags"), mcp.Items(stringList)),
		mcp.WithNumber("project_id", mcp.Description("New project id")),
		mcp.WithString("start", mcp.Description("Local start time")),
		mcp.WithString("stop", mcp.Description("Local stop time")),
		mcp.WithNumber("duration", mcp.Description("Duration in seconds")),
		mcp.WithBoolean("billable", mcp.Description("Billable flag")),
	), h.handleUpdate)

	addTool(s, h.log, mcp.NewTool("get_time_entries_for_range",
		mcp.WithDescription("Entries started between two local days given as offsets from today: 0 is today, -1 yesterday."),
		mcp.WithNumber("from_day_offset", mcp.Description("First day, default 0")),
		mcp.WithNumber("to_day_offset", mcp.Description("Last day, default 0")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleRange)

	addTool(s, h.log, mcp.NewTool("get_timezone_info",
		mcp.WithDescription("Return the local timezone used to interpret and render times."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleTimezone)

	addTool(s, h.log, mcp.NewTool("get_work_context",
		mcp.WithDescription("Summarise the last 7 days of tracked time and the running timer."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleWorkContext)
	return nil
}

func (h *EntryHandler) handleNewEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := entryInput(req.GetArguments())
	if err != nil {
		return errorResult(err, nil)
	}
	res, err := h.entries.Create(ctx, usecase.NewEntryRequest{
		WorkspaceName:  req.GetString("workspace_name", ""),
		ProjectName:    req.GetString("project_name", ""),
		TimeEntryInput: in,
	})
	if err != nil {
		h.log.Warn("new_time_entry failed", slog.String("error", err.Error()))
		return errorResult(err, map[string]any{"debug_info": res.Debug})
	}
	return jsonResult(res)
}

func (h *EntryHandler) handleStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	e, err := h.entries.Stop(ctx, name, req.GetString("workspace_name", ""))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(e)
}

func (h *EntryHandler) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	st, err := h.entries.Delete(ctx, name, req.GetString("workspace_name", ""))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(map[string]any{"message": "Time entry deleted", "time_entry": name, "result": st})
}

func (h *EntryHandler) handleCurrent(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.entries.Current(ctx)
	if err != nil {
		return errorResult(err, nil)
	}
	if res.Entry == nil {
		return jsonResult(map[string]any{"message": "No time entry is currently running", "timezone_info": res.Timezone})
	}
	return jsonResult(res)
}

func (h *EntryHandler) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	in, err := entryInput(req.GetArguments())
	if err != nil {
		return errorResult(err, nil)
	}
	res, err := h.entries.Update(ctx, usecase.UpdateRequest{
		Name:           name,
		WorkspaceName:  req.GetString("workspace_name", ""),
		TimeEntryInput: in,
	})
	if err != nil {
		return errorResult(err, map[string]any{"debug_info": res.Debug})
	}
	return jsonResult(res)
}

func (h *EntryHandler) handleRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := req.GetInt("from_day_offset", 0)
	to := req.GetInt("to_day_offset", 0)
	res, err := h.entries.Range(ctx, from, to)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(res)
}

func (h *EntryHandler) handleTimezone(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.conv.Info())
}

func (h *EntryHandler) handleWorkContext(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wc, err := h.workCtx.Run(ctx)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(wc)
}
