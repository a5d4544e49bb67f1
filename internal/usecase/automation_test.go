package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports/portstest"
	"toggl-mcp/internal/usecase"
)

func newAutomation(fake *portstest.Toggl, store *portstest.MemoryStore) *usecase.AutomationService {
	return &usecase.AutomationService{
		Log:      discardLogger(),
		Toggl:    fake,
		Store:    store,
		Resolver: resolverFor(fake),
		Conv:     newConv(),
		NewID:    func() string { return "rec-1" },
	}
}

func TestPresets_SaveStartDelete(t *testing.T) {
	var sent domain.TimeEntryInput
	fake := projectsFake()
	fake.CreateTimeEntryFn = func(_ context.Context, ws int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
		sent = in
		return domain.TimeEntry{ID: 100, WorkspaceID: ws, Start: *in.Start}, nil
	}
	store := &portstest.MemoryStore{}
	svc := newAutomation(fake, store)
	ctx := context.Background()

	_, err := svc.SavePreset(ctx, domain.Preset{Name: "deep", Description: "Deep work", ProjectName: "Backend", Tags: []string{"focus"}, Billable: domain.Ptr(true)})
	require.NoError(t, err)

	started, err := svc.StartPreset(ctx, "deep")
	require.NoError(t, err)
	assert.Equal(t, int64(100), started.Entry.ID)
	assert.Equal(t, "Deep work", *sent.Description)
	assert.Equal(t, int64(10), *sent.ProjectID)
	assert.Equal(t, int64(-1), *sent.Duration)
	assert.True(t, *sent.Billable)
	assert.Equal(t, "deep", started.Preset.Name)

	require.NoError(t, svc.DeletePreset(ctx, "deep"))
	_, err = svc.StartPreset(ctx, "deep")
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(svc.DeletePreset(ctx, "deep")))
}

func TestSavePreset_RequiresName(t *testing.T) {
	svc := newAutomation(&portstest.Toggl{}, &portstest.MemoryStore{})

	_, err := svc.SavePreset(context.Background(), domain.Preset{})

	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestValidateSchedule(t *testing.T) {
	cases := []struct {
		name string
		s    domain.Schedule
		ok   bool
	}{
		{"daily", domain.Schedule{Frequency: "daily"}, true},
		{"weekly", domain.Schedule{Frequency: "weekly", Days: []string{"Monday", "friday"}}, true},
		{"weekly without days", domain.Schedule{Frequency: "weekly"}, false},
		{"weekly bad day", domain.Schedule{Frequency: "weekly", Days: []string{"funday"}}, false},
		{"monthly", domain.Schedule{Frequency: "monthly", DayOfMonth: 31}, true},
		{"monthly out of range", domain.Schedule{Frequency: "monthly", DayOfMonth: 32}, false},
		{"missing", domain.Schedule{}, false},
		{"hourly", domain.Schedule{Frequency: "hourly"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := usecase.ValidateSchedule(tc.s)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
			}
		})
	}
}

func TestRecurring_CreateAndRun(t *testing.T) {
	var sent []domain.TimeEntryInput
	fake := projectsFake()
	fake.CreateTimeEntryFn = func(_ context.Context, ws int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
		assert.Equal(t, int64(1), ws)
		sent = append(sent, in)
		return domain.TimeEntry{ID: int64(len(sent))}, nil
	}
	store := &portstest.MemoryStore{}
	svc := newAutomation(fake, store)
	ctx := context.Background()

	r, err := svc.CreateRecurring(ctx, usecase.RecurringRequest{
		Description: "Standup",
		ProjectName: "Frontend",
		Schedule:    domain.Schedule{Frequency: "weekly", Days: []string{"monday"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", r.ID)
	assert.Equal(t, int64(3600), r.DurationSec)
	assert.Equal(t, int64(11), *r.ProjectID)
	assert.Nil(t, r.LastRun)

	run, err := svc.RunRecurring(ctx, "rec-1", "", "")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "2025-06-10T06:30:00.000Z", *sent[0].Start)
	assert.Equal(t, int64(3600), *sent[0].Duration)
	require.NotNil(t, run.Recurring.LastRun)

	stored, err := store.GetRecurring(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, run.Recurring.LastRun, stored.LastRun)

	_, err = svc.RunRecurring(ctx, "rec-1", "2025-06-10T09:00:00", "2025-06-10T09:15:00")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, "2025-06-10T03:30:00.000Z", *sent[1].Start)
	assert.Equal(t, "2025-06-10T03:45:00.000Z", *sent[1].Stop)
	assert.Equal(t, int64(900), *sent[1].Duration)
}

func TestRecurring_InvalidScheduleNeverResolves(t *testing.T) {
	svc := newAutomation(&portstest.Toggl{}, &portstest.MemoryStore{})

	_, err := svc.CreateRecurring(context.Background(), usecase.RecurringRequest{Description: "x"})

	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestRunRecurring_BackendFailureKeepsLastRun(t *testing.T) {
	fake := &portstest.Toggl{
		CreateTimeEntryFn: func(context.Context, int64, domain.TimeEntryInput) (domain.TimeEntry, error) {
			return domain.TimeEntry{}, errors.New("HTTP error: 400: nope")
		},
	}
	store := &portstest.MemoryStore{}
	require.NoError(t, store.SaveRecurring(context.Background(), domain.RecurringEntry{ID: "r", WorkspaceID: 1, DurationSec: 60}))

	_, err := newAutomation(fake, store).RunRecurring(context.Background(), "r", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to create time entry from recurring configuration")
	stored, _ := store.GetRecurring(context.Background(), "r")
	assert.Nil(t, stored.LastRun)
}
