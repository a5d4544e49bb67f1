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

// SearchHandler serves the filtering and full text tools.
type SearchHandler struct {
	log   *slog.Logger
	query *usecase.QueryEngine
	conv  *timeconv.Converter
}

func NewSearchHandler(log *slog.Logger, q *usecase.QueryEngine, conv *timeconv.Converter) *SearchHandler {
	return &SearchHandler{log: log, query: q, conv: conv}
}

func (h *SearchHandler) RegisterTools(s *server.MCPServer) error {
	addTool(s, h.log, mcp.NewTool("advanced_search_time_entries",
		mcp.WithDescription("Search time entries. Every filter is optional and all given filters must match. Dates are local times."),
		mcp.WithString("text", mcp.Description("Text contained in (or equal to, with exact_match) the description")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Match text case-sensitively")),
		mcp.WithBoolean("exact_match", mcp.Description("Require the whole description to equal text")),
		mcp.WithArray("project_ids", mcp.Description("Entry must belong to one of these projects"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("start_date", mcp.Description("Earliest local start, inclusive")),
		mcp.WithString("end_date", mcp.Description("Latest local start, inclusive")),
		mcp.WithArray("tags", mcp.Description("Entry must carry at least one of these tags"), mcp.Items(stringList)),
		mcp.WithNumber("min_duration", mcp.Description("Minimum duration in seconds")),
		mcp.WithNumber("max_duration", mcp.Description("Maximum duration in seconds")),
		mcp.WithBoolean("billable", mcp.Description("Billable flag to match")),
		mcp.WithNumber("workspace_id", mcp.Description("Workspace id to match")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleAdvancedSearch)

	addTool(s, h.log, mcp.NewTool("full_text_search_time_entries",
		mcp.WithDescription("Find entries where any of the given fields contains the query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for")),
		mcp.WithArray("fields", mcp.Description("Fields to scan, default description"), mcp.Items(stringList)),
		mcp.WithBoolean("case_sensitive", mcp.Description("Match case-sensitively")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleFullText)
	return nil
}

type searchResponse struct {
	Count       int                         `json:"count"`
	Entries     []domain.TimeEntry          `json:"time_entries"`
	Criteria    *domain.SearchCriteria      `json:"criteria,omitempty"`
	Conversions []timeconv.ConversionReport `json:"date_conversions,omitempty"`
	Timezone    timeconv.TimezoneInfo       `json:"timezone_info"`
}

// criteria builds the filter set, converting local date bounds to UTC.
func (h *SearchHandler) criteria(args map[string]any) (domain.SearchCriteria, []timeconv.ConversionReport, error) {
	r := newArgReader(args)
	c := domain.SearchCriteria{
		Tags:        r.values("tags"),
		MinDuration: r.integer("min_duration"),
		MaxDuration: r.integer("max_duration"),
		Billable:    r.boolean("billable"),
		WorkspaceID: r.integer("workspace_id"),
	}
	if t := r.str("text"); t != nil {
		c.Text = *t
	}
	if b := r.boolean("case_sensitive"); b != nil {
		c.CaseSensitive = *b
	}
	if b := r.boolean("exact_match"); b != nil {
		c.ExactMatch = *b
	}
	if _, err := decodeArg(args, "project_ids", &c.ProjectIDs); err != nil {
		return c, nil, err
	}
	start, end := r.str("start_date"), r.str("end_date")
	if r.err != nil {
		return c, nil, r.err
	}

	var reports []timeconv.ConversionReport
	var bounds domain.DateBounds
	if start != nil && *start != "" {
		utc, rep := h.conv.LocalToUTC(*start)
		bounds.Start, reports = utc, append(reports, rep)
	}
	if end != nil && *end != "" {
		utc, rep := h.conv.LocalToUTC(*end)
		bounds.End, reports = utc, append(reports, rep)
	}
	if bounds != (domain.DateBounds{}) {
		c.Dates = &bounds
	}
	return c, reports, nil
}

func (h *SearchHandler) handleAdvancedSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, reports, err := h.criteria(req.GetArguments())
	if err != nil {
		return errorResult(err, nil)
	}
	entries, err := h.query.Search(ctx, c)
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(searchResponse{
		Count:       len(entries),
		Entries:     h.conv.EnrichAll(entries),
		Criteria:    &c,
		Conversions: reports,
		Timezone:    h.conv.Info(),
	})
}

func (h *SearchHandler) handleFullText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return invalidArgs("%s", err.Error())
	}
	entries, err := h.query.FullTextSearch(ctx, query,
		req.GetStringSlice("fields", nil), req.GetBool("case_sensitive", false))
	if err != nil {
		return errorResult(err, nil)
	}
	return jsonResult(searchResponse{
		Count:    len(entries),
		Entries:  h.conv.EnrichAll(entries),
		Timezone: h.conv.Info(),
	})
}
