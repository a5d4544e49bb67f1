package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
)

const defaultRecurringDuration int64 = 3600

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// AutomationService manages timer presets and recurring entry configs.
type AutomationService struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Store    ports.PresetStore
	Resolver *resolve.Resolver
	Conv     *timeconv.Converter
	// NewID generates recurring entry ids; uuid.NewString when nil.
	NewID func() string
}

func (s *AutomationService) ready() error {
	if s.Store == nil || s.Toggl == nil || s.Resolver == nil || s.Conv == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	return nil
}

func (s *AutomationService) SavePreset(ctx context.Context, p domain.Preset) (domain.Preset, error) {
	if err := s.ready(); err != nil {
		return domain.Preset{}, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return domain.Preset{}, domain.Errorf(domain.CodeValidation, "preset name is required")
	}
	if err := s.Store.SavePreset(ctx, p); err != nil {
		return domain.Preset{}, err
	}
	s.Log.Info("preset saved", slog.String("name", p.Name))
	return p, nil
}

func (s *AutomationService) GetPreset(ctx context.Context, name string) (domain.Preset, error) {
	return s.Store.GetPreset(ctx, name)
}

func (s *AutomationService) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	return s.Store.ListPresets(ctx)
}

func (s *AutomationService) DeletePreset(ctx context.Context, name string) error {
	if err := s.Store.DeletePreset(ctx, name); err != nil {
		return err
	}
	s.Log.Info("preset deleted", slog.String("name", name))
	return nil
}

// PresetStart is the entry started from a preset.
type PresetStart struct {
	Entry            domain.TimeEntry `json:"time_entry"`
	Preset           domain.Preset    `json:"preset_used"`
	APICallLocalTime string           `json:"time"`
}

// StartPreset starts a running entry configured by the named preset.
func (s *AutomationService) StartPreset(ctx context.Context, name string) (PresetStart, error) {
	if err := s.ready(); err != nil {
		return PresetStart{}, err
	}
	p, err := s.Store.GetPreset(ctx, name)
	if err != nil {
		return PresetStart{}, err
	}
	ws, pid, err := s.resolveTarget(ctx, p.WorkspaceName, p.ProjectName)
	if err != nil {
		return PresetStart{}, err
	}
	now := s.Conv.NowUTC()
	in := domain.TimeEntryInput{
		ProjectID: pid,
		Start:     &now,
		Duration:  domain.Ptr[int64](-1),
		Billable:  domain.Ptr(p.Billable != nil && *p.Billable),
	}
	if p.Description != "" {
		in.Description = domain.Ptr(p.Description)
	}
	if len(p.Tags) > 0 {
		in.Tags = domain.Ptr(p.Tags)
	}
	created, err := s.Toggl.CreateTimeEntry(ctx, ws, in)
	if err != nil {
		return PresetStart{}, domain.Wrap(domain.CodeOf(err), err, "Failed to start timer with preset '"+name+"'")
	}
	s.Log.Info("timer started from preset", slog.String("preset", name), slog.Int64("id", created.ID))
	return PresetStart{Entry: s.Conv.Enrich(created), Preset: p, APICallLocalTime: s.Conv.UTCToLocal(now)}, nil
}

func (s *AutomationService) resolveTarget(ctx context.Context, workspaceName, projectName string) (int64, *int64, error) {
	ws, err := s.Resolver.WorkspaceID(ctx, workspaceName)
	if err != nil {
		return 0, nil, err
	}
	if projectName == "" {
		return ws, nil, nil
	}
	pid, err := s.Resolver.ProjectID(ctx, ws, projectName)
	if err != nil {
		return 0, nil, err
	}
	return ws, &pid, nil
}

// ValidateSchedule checks frequency and the fields it needs.
func ValidateSchedule(sc domain.Schedule) error {
	switch sc.Frequency {
	case domain.FrequencyDaily:
	case domain.FrequencyWeekly:
		if len(sc.Days) == 0 {
			return domain.Errorf(domain.CodeValidation, "weekly schedule needs at least one day")
		}
		for _, d := range sc.Days {
			if !slices.Contains(weekdays, strings.ToLower(d)) {
				return domain.Errorf(domain.CodeValidation, "unknown weekday %q", d)
			}
		}
	case domain.FrequencyMonthly:
		if sc.DayOfMonth < 1 || sc.DayOfMonth > 31 {
			return domain.Errorf(domain.CodeValidation, "day_of_month must be between 1 and 31")
		}
	case "":
		return domain.Errorf(domain.CodeValidation, "Schedule must be provided for recurring entries")
	default:
		return domain.Errorf(domain.CodeValidation, "unsupported frequency %q: use daily, weekly or monthly", sc.Frequency)
	}
	return nil
}

// RecurringRequest describes a recurring entry to create.
type RecurringRequest struct {
	Description   string
	ProjectName   string
	WorkspaceName string
	Tags          []string
	Billable      bool
	Schedule      domain.Schedule
	DurationSec   int64
}

func (s *AutomationService) CreateRecurring(ctx context.Context, req RecurringRequest) (domain.RecurringEntry, error) {
	if err := s.ready(); err != nil {
		return domain.RecurringEntry{}, err
	}
	if err := ValidateSchedule(req.Schedule); err != nil {
		return domain.RecurringEntry{}, err
	}
	if req.DurationSec < 0 {
		return domain.RecurringEntry{}, domain.Errorf(domain.CodeValidation, "duration must not be negative")
	}
	if req.DurationSec == 0 {
		req.DurationSec = defaultRecurringDuration
	}
	ws, pid, err := s.resolveTarget(ctx, req.WorkspaceName, req.ProjectName)
	if err != nil {
		return domain.RecurringEntry{}, err
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	r := domain.RecurringEntry{
		ID:            newID(),
		Description:   req.Description,
		ProjectName:   req.ProjectName,
		ProjectID:     pid,
		WorkspaceName: req.WorkspaceName,
		WorkspaceID:   ws,
		Tags:          req.Tags,
		Billable:      req.Billable,
		Schedule:      req.Schedule,
		DurationSec:   req.DurationSec,
		CreatedAt:     s.Conv.Now().UTC().Truncate(time.Second),
	}
	if err := s.Store.SaveRecurring(ctx, r); err != nil {
		return domain.RecurringEntry{}, err
	}
	s.Log.Info("recurring entry created", slog.String("id", r.ID), slog.String("frequency", r.Schedule.Frequency))
	return r, nil
}

func (s *AutomationService) GetRecurring(ctx context.Context, id string) (domain.RecurringEntry, error) {
	return s.Store.GetRecurring(ctx, id)
}

func (s *AutomationService) ListRecurring(ctx context.Context) ([]domain.RecurringEntry, error) {
	return s.Store.ListRecurring(ctx)
}

func (s *AutomationService) DeleteRecurring(ctx context.Context, id string) error {
	if err := s.Store.DeleteRecurring(ctx, id); err != nil {
		return err
	}
	s.Log.Info("recurring entry deleted", slog.String("id", id))
	return nil
}

// RecurringRun is the entry created by running a recurring config.
type RecurringRun struct {
	Entry     domain.TimeEntry      `json:"time_entry"`
	Recurring domain.RecurringEntry `json:"recurring_entry"`
	Debug     DebugInfo             `json:"debug_info"`
}

// RunRecurring creates one entry from the config now. start and end are
// optional local times; without a start the entry begins now and lasts the
// configured duration.
func (s *AutomationService) RunRecurring(ctx context.Context, id, start, end string) (RecurringRun, error) {
	if err := s.ready(); err != nil {
		return RecurringRun{}, err
	}
	r, err := s.Store.GetRecurring(ctx, id)
	if err != nil {
		return RecurringRun{}, err
	}
	in := domain.TimeEntryInput{
		ProjectID: r.ProjectID,
		Billable:  domain.Ptr(r.Billable),
	}
	if r.Description != "" {
		in.Description = domain.Ptr(r.Description)
	}
	if len(r.Tags) > 0 {
		in.Tags = domain.Ptr(r.Tags)
	}
	if start != "" {
		in.Start = domain.Ptr(start)
	}
	if end != "" {
		in.Stop = domain.Ptr(end)
	}
	in, debug := Localize(s.Conv, in)
	if in.Stop == nil {
		in.Duration = domain.Ptr(r.DurationSec)
	}
	created, err := s.Toggl.CreateTimeEntry(ctx, r.WorkspaceID, completeForCreate(in, s.Conv.NowUTC()))
	if err != nil {
		return RecurringRun{Debug: debug}, domain.Wrap(domain.CodeOf(err), err, "Failed to create time entry from recurring configuration")
	}

	ran := s.Conv.Now().UTC().Truncate(time.Second)
	r.LastRun = &ran
	if err := s.Store.SaveRecurring(ctx, r); err != nil {
		s.Log.Warn("recording last run failed", slog.String("id", r.ID), slog.Any("err", err))
	}
	s.Log.Info("recurring entry ran", slog.String("id", r.ID), slog.Int64("time_entry_id", created.ID))
	return RecurringRun{Entry: s.Conv.Enrich(created), Recurring: r, Debug: debug}, nil
}
