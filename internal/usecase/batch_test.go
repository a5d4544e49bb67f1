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

func newMutator(fake *portstest.Toggl) *usecase.BatchMutator {
	return &usecase.BatchMutator{Log: discardLogger(), Toggl: fake, Conv: newConv()}
}

func TestBulkCreate_DefaultsAndPartialFailure(t *testing.T) {
	var sent []domain.TimeEntryInput
	fake := &portstest.Toggl{
		CreateTimeEntryFn: func(_ context.Context, ws int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
			require.Equal(t, int64(4), ws)
			sent = append(sent, in)
			if in.Description != nil && *in.Description == "bad" {
				return domain.TimeEntry{}, errors.New("HTTP error: 400: bad project")
			}
			return domain.TimeEntry{ID: int64(len(sent)), Start: *in.Start}, nil
		},
	}

	res, err := newMutator(fake).BulkCreate(context.Background(), 4, []domain.TimeEntryInput{
		{Description: domain.Ptr("running")},
		{Description: domain.Ptr("bad")},
		{
			Description: domain.Ptr("done"),
			Start:       domain.Ptr("2025-06-10T03:00:00.000Z"),
			Stop:        domain.Ptr("2025-06-10T04:30:00.000Z"),
		},
	})

	require.NoError(t, err)
	require.Len(t, sent, 3)

	assert.Equal(t, "2025-06-10T06:30:00.000Z", *sent[0].Start, "missing start becomes now")
	assert.Equal(t, int64(-1), *sent[0].Duration)
	assert.Equal(t, int64(5400), *sent[2].Duration, "completed entries never get the running sentinel")

	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "HTTP error: 400: bad project", res.Failed[0].Error)
	assert.Equal(t, domain.TimeEntryInput{Description: domain.Ptr("bad")}, res.Failed[0].Input)
	assert.NotEmpty(t, res.Succeeded[0].StartLocal)
}

func TestBulkCreate_UnparseableStopLeavesDurationUnset(t *testing.T) {
	var got domain.TimeEntryInput
	fake := &portstest.Toggl{
		CreateTimeEntryFn: func(_ context.Context, _ int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
			got = in
			return domain.TimeEntry{ID: 1}, nil
		},
	}

	_, err := newMutator(fake).BulkCreate(context.Background(), 1, []domain.TimeEntryInput{
		{Start: domain.Ptr("2025-06-10T03:00:00.000Z"), Stop: domain.Ptr("tomorrow")},
	})

	require.NoError(t, err)
	assert.Nil(t, got.Duration)
}

func TestBulkUpdate_BatchIndependence(t *testing.T) {
	var calls []int64
	fake := &portstest.Toggl{
		UpdateTimeEntryFn: func(_ context.Context, _ int64, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
			calls = append(calls, id)
			return domain.TimeEntry{ID: id, Description: *in.Description}, nil
		},
	}
	items := []domain.TimeEntryUpdate{
		{ID: domain.Ptr[int64](1), TimeEntryInput: domain.TimeEntryInput{Description: domain.Ptr("one")}},
		{TimeEntryInput: domain.TimeEntryInput{Description: domain.Ptr("two")}},
		{ID: domain.Ptr[int64](3), TimeEntryInput: domain.TimeEntryInput{Description: domain.Ptr("three")}},
	}

	res, err := newMutator(fake).BulkUpdate(context.Background(), 1, items)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, calls)
	require.Len(t, res.Succeeded, 2)
	assert.Equal(t, int64(1), res.Succeeded[0].ID)
	assert.Equal(t, int64(3), res.Succeeded[1].ID)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Missing time entry ID", res.Failed[0].Error)
	assert.Equal(t, items[1], res.Failed[0].Input)
}

func TestBulkUpdate_SendsOnlyPresentFields(t *testing.T) {
	var got domain.TimeEntryInput
	fake := &portstest.Toggl{
		UpdateTimeEntryFn: func(_ context.Context, _ int64, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
			got = in
			return domain.TimeEntry{ID: id}, nil
		},
	}

	_, err := newMutator(fake).BulkUpdate(context.Background(), 1, []domain.TimeEntryUpdate{
		{ID: domain.Ptr[int64](5), TimeEntryInput: domain.TimeEntryInput{Billable: domain.Ptr(true)}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TimeEntryInput{Billable: domain.Ptr(true)}, got)
}

func TestBulkUpdate_BackendFailureRecordsID(t *testing.T) {
	fake := &portstest.Toggl{
		UpdateTimeEntryFn: func(context.Context, int64, int64, domain.TimeEntryInput) (domain.TimeEntry, error) {
			return domain.TimeEntry{}, &domain.Error{Code: domain.CodeBackend, Message: "Resource not found.", Status: 404}
		},
	}

	res, err := newMutator(fake).BulkUpdate(context.Background(), 1, []domain.TimeEntryUpdate{{ID: domain.Ptr[int64](8)}})

	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(8), *res.Failed[0].ID)
	assert.Equal(t, "Resource not found.", res.Failed[0].Error)
}

func TestBulkDelete_Tally(t *testing.T) {
	fake := &portstest.Toggl{
		DeleteTimeEntryFn: func(_ context.Context, _ int64, id int64) (int, error) {
			if id == 999 {
				return 0, &domain.Error{Code: domain.CodeBackend, Message: "Resource not found.", Status: 404}
			}
			return 200, nil
		},
	}

	res, err := newMutator(fake).BulkDelete(context.Background(), 1, []int64{10, 999, 11})

	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, []domain.DeleteStatus{{ID: 10, Status: 200}, {ID: 11, Status: 200}}, res.Succeeded)
	assert.Equal(t, int64(999), *res.Failed[0].ID)
}

func TestBulk_MissingWorkspaceIsTheOnlyCallError(t *testing.T) {
	m := newMutator(&portstest.Toggl{})
	ctx := context.Background()

	_, err := m.BulkCreate(ctx, 0, nil)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	_, err = m.BulkUpdate(ctx, 0, nil)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	res, err := m.BulkDelete(ctx, 0, []int64{1})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	assert.Zero(t, res.SuccessCount)
}
