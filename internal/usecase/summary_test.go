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

func pid(id int64) *int64 { return domain.Ptr(id) }

func TestSummarize_Totals(t *testing.T) {
	entries := []domain.TimeEntry{
		{Description: "API", ProjectID: pid(1), Duration: dur(3600), Tags: []string{"dev"}},
		{Description: "API", ProjectID: pid(2), Duration: dur(7200), Tags: []string{"dev", "urgent"}},
		{Description: "Review", ProjectID: pid(1), Duration: dur(1800)},
		{Description: "Live", ProjectID: pid(3), Duration: dur(-1), Tags: []string{"urgent"}},
		{Duration: dur(600)},
	}

	wc := usecase.Summarize(entries, nil, map[int64]string{1: "Backend", 2: "Frontend"})

	assert.Equal(t, int64(13200), wc.TotalSeconds, "running entries add nothing")
	assert.Equal(t, "3.7", wc.TotalHours)
	assert.Equal(t, 5, wc.EntryCount)
	assert.Equal(t, 3, wc.DistinctDescriptions)

	require.Len(t, wc.TopProjects, 3)
	assert.Equal(t, usecase.ProjectStat{ProjectID: 2, Name: "Frontend", Seconds: 7200, Hours: "2.0", Count: 1}, wc.TopProjects[0])
	assert.Equal(t, usecase.ProjectStat{ProjectID: 1, Name: "Backend", Seconds: 5400, Hours: "1.5", Count: 2}, wc.TopProjects[1])
	assert.Equal(t, int64(3), wc.TopProjects[2].ProjectID)
	assert.Zero(t, wc.TopProjects[2].Seconds)

	assert.Equal(t, []usecase.TagStat{{Tag: "dev", Count: 2}, {Tag: "urgent", Count: 2}}, wc.TopTags)
	assert.Contains(t, wc.Narrative, "No timer is currently running.")
	assert.Contains(t, wc.Narrative, "Most time went to Frontend (2.0 hours over 1 entries).")
}

func TestSummarize_TopFiveStableOnTies(t *testing.T) {
	var entries []domain.TimeEntry
	for i := int64(1); i <= 7; i++ {
		entries = append(entries, domain.TimeEntry{ProjectID: pid(i), Duration: dur(100), Tags: []string{string(rune('a' + i))}})
	}

	wc := usecase.Summarize(entries, nil, nil)

	require.Len(t, wc.TopProjects, 5)
	for i, p := range wc.TopProjects {
		assert.Equal(t, int64(i+1), p.ProjectID)
	}
	require.Len(t, wc.TopTags, 5)
	assert.Equal(t, "b", wc.TopTags[0].Tag)
	assert.Equal(t, "f", wc.TopTags[4].Tag)
}

func TestSummarize_Empty(t *testing.T) {
	wc := usecase.Summarize(nil, nil, nil)

	assert.Zero(t, wc.TotalSeconds)
	assert.NotNil(t, wc.TopProjects)
	assert.NotNil(t, wc.TopTags)
	assert.Equal(t, []string{
		"No timer is currently running.",
		"Tracked 0.0 hours across 0 entries in the last 7 days.",
	}, wc.Narrative)
}

func TestWorkContextUseCase_Run(t *testing.T) {
	fake := &portstest.Toggl{
		ListTimeEntriesFn: portstest.Entries(
			domain.TimeEntry{ID: 1, WorkspaceID: 1, ProjectID: pid(5), Description: "Old", Start: "2025-05-01T00:00:00.000Z", Duration: dur(999)},
			domain.TimeEntry{ID: 2, WorkspaceID: 1, ProjectID: pid(5), Description: "Docs", Start: "2025-06-05T04:00:00.000Z", Duration: dur(3600)},
			domain.TimeEntry{ID: 3, WorkspaceID: 1, ProjectID: pid(5), Description: "Docs", Start: "2025-06-10T05:00:00.000Z", Duration: dur(-1)},
		),
		CurrentTimeEntryFn: func(context.Context) (*domain.TimeEntry, error) {
			return &domain.TimeEntry{ID: 3, WorkspaceID: 1, ProjectID: pid(5), Description: "Docs", Start: "2025-06-10T05:00:00.000Z", Duration: dur(-1)}, nil
		},
		ListProjectsFn: func(context.Context, int64, domain.ProjectListOptions) ([]domain.Project, error) {
			return []domain.Project{{ID: 5, Name: "Handbook"}}, nil
		},
	}
	uc := &usecase.WorkContextUseCase{
		Log:      discardLogger(),
		Toggl:    fake,
		Query:    &usecase.QueryEngine{Log: discardLogger(), Toggl: fake},
		Resolver: resolverFor(fake),
		Conv:     newConv(),
	}

	wc, err := uc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2025-06-03T18:30:00.000Z", wc.Window.Start)
	assert.Equal(t, "2025-06-10T18:30:00.000Z", wc.Window.End)
	assert.Equal(t, 2, wc.EntryCount)
	assert.Equal(t, int64(3600), wc.TotalSeconds)
	require.NotNil(t, wc.Current)
	assert.Equal(t, "2025-06-10 10:30:00 IST", wc.Current.StartLocal)
	assert.Equal(t, `Currently tracking "Docs" on Handbook since 2025-06-10 10:30:00 IST.`, wc.Narrative[0])
	assert.Equal(t, "Handbook", wc.TopProjects[0].Name)
	assert.Equal(t, "IST", wc.Timezone.Name)
}

func TestWorkContextUseCase_ProjectLookupFailureKeepsSummary(t *testing.T) {
	fake := &portstest.Toggl{
		ListTimeEntriesFn: portstest.Entries(
			domain.TimeEntry{ID: 2, WorkspaceID: 1, ProjectID: pid(5), Start: "2025-06-09T04:00:00.000Z", Duration: dur(60)},
		),
		CurrentTimeEntryFn: func(context.Context) (*domain.TimeEntry, error) { return nil, nil },
		ListProjectsFn: func(context.Context, int64, domain.ProjectListOptions) ([]domain.Project, error) {
			return nil, errors.New("forbidden")
		},
	}
	uc := &usecase.WorkContextUseCase{
		Log:      discardLogger(),
		Toggl:    fake,
		Query:    &usecase.QueryEngine{Log: discardLogger(), Toggl: fake},
		Resolver: resolverFor(fake),
		Conv:     newConv(),
	}

	wc, err := uc.Run(context.Background())

	require.NoError(t, err)
	assert.Nil(t, wc.Current)
	assert.Empty(t, wc.TopProjects[0].Name)
	assert.Contains(t, wc.Narrative, "Most time went to project 5 (0.0 hours over 1 entries).")
}

func TestWorkContextUseCase_CurrentEntryErrorPropagates(t *testing.T) {
	boom := errors.New("down")
	fake := &portstest.Toggl{
		ListTimeEntriesFn:  portstest.Entries(),
		CurrentTimeEntryFn: func(context.Context) (*domain.TimeEntry, error) { return nil, boom },
	}
	uc := &usecase.WorkContextUseCase{
		Log:   discardLogger(),
		Toggl: fake,
		Query: &usecase.QueryEngine{Log: discardLogger(), Toggl: fake},
		Conv:  newConv(),
	}

	_, err := uc.Run(context.Background())

	assert.ErrorIs(t, err, boom)
}
