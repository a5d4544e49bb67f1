package usecase

import (
	"context"
	"log/slog"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
)

// DebugInfo records how local timestamps were turned into UTC for a write.
type DebugInfo struct {
	SystemTimezone  string                     `json:"system_timezone"`
	TimeEntryID     int64                      `json:"time_entry_id,omitempty"`
	StartConversion *timeconv.ConversionReport `json:"start_conversion,omitempty"`
	StopConversion  *timeconv.ConversionReport `json:"stop_conversion,omitempty"`
}

// Localize converts in's local Start/Stop to canonical UTC and reports what
// it did. Conversion failures pass the raw value through for the backend
// to reject.
func Localize(conv *timeconv.Converter, in domain.TimeEntryInput) (domain.TimeEntryInput, DebugInfo) {
	info := DebugInfo{SystemTimezone: conv.Location().String()}
	if in.Start != nil && *in.Start != "" {
		utc, rep := conv.LocalToUTC(*in.Start)
		in.Start, info.StartConversion = &utc, &rep
	}
	if in.Stop != nil && *in.Stop != "" {
		utc, rep := conv.LocalToUTC(*in.Stop)
		in.Stop, info.StopConversion = &utc, &rep
	}
	return in, info
}

// TimeEntryService runs single-entry operations addressed by description
// and workspace name. The first error stops the operation.
type TimeEntryService struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Resolver *resolve.Resolver
	Query    *QueryEngine
	Conv     *timeconv.Converter
}

// NewEntryRequest describes an entry to create. Start and Stop are local
// wall-clock times.
type NewEntryRequest struct {
	WorkspaceName string
	ProjectName   string
	domain.TimeEntryInput
}

// CreateResult is the created entry plus the local time of the call.
type CreateResult struct {
	Entry            domain.TimeEntry `json:"time_entry"`
	APICallLocalTime string           `json:"api_call_local_time"`
	Debug            DebugInfo        `json:"debug_info"`
}

// Create starts a running entry, or records a finished one when a start is
// given.
func (s *TimeEntryService) Create(ctx context.Context, req NewEntryRequest) (CreateResult, error) {
	ws, err := s.Resolver.WorkspaceID(ctx, req.WorkspaceName)
	if err != nil {
		return CreateResult{}, err
	}
	in := req.TimeEntryInput
	if req.ProjectName != "" {
		pid, err := s.Resolver.ProjectID(ctx, ws, req.ProjectName)
		if err != nil {
			return CreateResult{}, err
		}
		in.ProjectID = &pid
	}

	in, debug := Localize(s.Conv, in)
	if in.Start == nil || *in.Start == "" {
		in.Stop, in.Duration = nil, domain.Ptr[int64](-1)
	}
	now := s.Conv.NowUTC()
	created, err := s.Toggl.CreateTimeEntry(ctx, ws, completeForCreate(in, now))
	if err != nil {
		return CreateResult{Debug: debug}, err
	}
	s.Log.Info("time entry created", slog.Int64("id", created.ID), slog.Int64("workspace_id", ws))
	return CreateResult{
		Entry:            s.Conv.Enrich(created),
		APICallLocalTime: s.Conv.UTCToLocal(now),
		Debug:            debug,
	}, nil
}

func (s *TimeEntryService) locate(ctx context.Context, description, workspaceName string) (ws, id int64, err error) {
	if ws, err = s.Resolver.WorkspaceID(ctx, workspaceName); err != nil {
		return 0, 0, err
	}
	if id, err = s.Resolver.TimeEntryID(ctx, description); err != nil {
		return 0, 0, err
	}
	return ws, id, nil
}

// Stop stops the entry with the given description.
func (s *TimeEntryService) Stop(ctx context.Context, description, workspaceName string) (domain.TimeEntry, error) {
	ws, id, err := s.locate(ctx, description, workspaceName)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	stopped, err := s.Toggl.StopTimeEntry(ctx, ws, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	s.Log.Info("time entry stopped", slog.Int64("id", id))
	return s.Conv.Enrich(stopped), nil
}

// Delete deletes the entry with the given description.
func (s *TimeEntryService) Delete(ctx context.Context, description, workspaceName string) (domain.DeleteStatus, error) {
	ws, id, err := s.locate(ctx, description, workspaceName)
	if err != nil {
		return domain.DeleteStatus{}, err
	}
	status, err := s.Toggl.DeleteTimeEntry(ctx, ws, id)
	if err != nil {
		return domain.DeleteStatus{}, err
	}
	s.Log.Info("time entry deleted", slog.Int64("id", id))
	return domain.DeleteStatus{ID: id, Status: status}, nil
}

// CurrentResult is the running entry, nil when none.
type CurrentResult struct {
	Entry    *domain.TimeEntry     `json:"time_entry"`
	Timezone timeconv.TimezoneInfo `json:"timezone_info"`
}

func (s *TimeEntryService) Current(ctx context.Context) (CurrentResult, error) {
	cur, err := s.Toggl.CurrentTimeEntry(ctx)
	if err != nil {
		return CurrentResult{}, err
	}
	res := CurrentResult{Timezone: s.Conv.Info()}
	if cur != nil {
		e := s.Conv.Enrich(*cur)
		res.Entry = &e
	}
	return res, nil
}

// UpdateRequest changes the set fields of the entry named Name.
type UpdateRequest struct {
	Name          string
	WorkspaceName string
	domain.TimeEntryInput
}

type UpdateResult struct {
	Entry    domain.TimeEntry      `json:"time_entry"`
	Debug    DebugInfo             `json:"debug_info"`
	Timezone timeconv.TimezoneInfo `json:"timezone_info"`
}

func (s *TimeEntryService) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	ws, id, err := s.locate(ctx, req.Name, req.WorkspaceName)
	if err != nil {
		return UpdateResult{}, err
	}
	in, debug := Localize(s.Conv, req.TimeEntryInput)
	debug.TimeEntryID = id
	updated, err := s.Toggl.UpdateTimeEntry(ctx, ws, id, in)
	if err != nil {
		return UpdateResult{Debug: debug}, err
	}
	s.Log.Info("time entry updated", slog.Int64("id", id))
	return UpdateResult{Entry: s.Conv.Enrich(updated), Debug: debug, Timezone: s.Conv.Info()}, nil
}

// RangeResult holds the entries of a span of local days.
type RangeResult struct {
	Range    domain.DateRange      `json:"range"`
	Entries  []domain.TimeEntry    `json:"time_entries"`
	Timezone timeconv.TimezoneInfo `json:"timezone_info"`
}

// Range returns entries from local day fromOffset through toOffset.
func (s *TimeEntryService) Range(ctx context.Context, fromOffset, toOffset int) (RangeResult, error) {
	r := s.Conv.Span(fromOffset, toOffset)
	entries, err := s.Query.EntriesInRange(ctx, r)
	if err != nil {
		return RangeResult{}, err
	}
	return RangeResult{Range: r, Entries: s.Conv.EnrichAll(entries), Timezone: s.Conv.Info()}, nil
}
