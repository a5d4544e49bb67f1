package usecase

import (
	"context"
	"log/slog"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/timeconv"
)

// BatchMutator applies homogeneous batches of writes one request at a time.
// A failing item is recorded and the batch moves on; only a batch that
// cannot be attempted at all returns an error.
type BatchMutator struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
	Conv  *timeconv.Converter
}

func requireWorkspace(workspaceID int64, op string) error {
	if workspaceID == 0 {
		return domain.Errorf(domain.CodeValidation, "workspace_id must be provided to %s", op)
	}
	return nil
}

// BulkCreate creates every entry. Timestamps must already be canonical UTC.
func (b *BatchMutator) BulkCreate(ctx context.Context, workspaceID int64, entries []domain.TimeEntryInput) (domain.BatchResult[domain.TimeEntry], error) {
	res := domain.NewBatchResult[domain.TimeEntry]()
	if err := requireWorkspace(workspaceID, "bulk_create_time_entries"); err != nil {
		return res, err
	}
	for i, in := range entries {
		created, err := b.Toggl.CreateTimeEntry(ctx, workspaceID, completeForCreate(in, b.Conv.NowUTC()))
		if err != nil {
			b.Log.Warn("bulk create item failed", slog.Int("index", i), slog.Any("err", err))
			res.AddFailure(domain.BatchFailure{Input: in, Error: err.Error()})
			continue
		}
		res.AddSuccess(b.Conv.Enrich(created))
	}
	b.Log.Info("bulk create done", slog.Int("ok", res.SuccessCount), slog.Int("failed", res.ErrorCount))
	return res, nil
}

// BulkUpdate applies partial updates. Only the fields set on each item are
// sent; an item without an id fails on its own.
func (b *BatchMutator) BulkUpdate(ctx context.Context, workspaceID int64, entries []domain.TimeEntryUpdate) (domain.BatchResult[domain.TimeEntry], error) {
	res := domain.NewBatchResult[domain.TimeEntry]()
	if err := requireWorkspace(workspaceID, "bulk_update_time_entries"); err != nil {
		return res, err
	}
	for i, u := range entries {
		if u.ID == nil || *u.ID == 0 {
			res.AddFailure(domain.BatchFailure{Input: u, Error: "Missing time entry ID"})
			continue
		}
		updated, err := b.Toggl.UpdateTimeEntry(ctx, workspaceID, *u.ID, u.TimeEntryInput)
		if err != nil {
			b.Log.Warn("bulk update item failed", slog.Int("index", i), slog.Int64("id", *u.ID), slog.Any("err", err))
			res.AddFailure(domain.BatchFailure{ID: u.ID, Error: err.Error()})
			continue
		}
		res.AddSuccess(b.Conv.Enrich(updated))
	}
	b.Log.Info("bulk update done", slog.Int("ok", res.SuccessCount), slog.Int("failed", res.ErrorCount))
	return res, nil
}

// BulkDelete deletes every id and tallies the outcome.
func (b *BatchMutator) BulkDelete(ctx context.Context, workspaceID int64, ids []int64) (domain.BatchResult[domain.DeleteStatus], error) {
	res := domain.NewBatchResult[domain.DeleteStatus]()
	if err := requireWorkspace(workspaceID, "bulk_delete_time_entries"); err != nil {
		return res, err
	}
	for _, id := range ids {
		status, err := b.Toggl.DeleteTimeEntry(ctx, workspaceID, id)
		if err != nil {
			b.Log.Warn("bulk delete item failed", slog.Int64("id", id), slog.Any("err", err))
			res.AddFailure(domain.BatchFailure{ID: domain.Ptr(id), Error: err.Error()})
			continue
		}
		res.AddSuccess(domain.DeleteStatus{ID: id, Status: status})
	}
	b.Log.Info("bulk delete done", slog.Int("ok", res.SuccessCount), slog.Int("failed", res.ErrorCount))
	return res, nil
}

// completeForCreate fills the fields Toggl needs on create. A missing start
// becomes now. Without a stop the entry runs (-1). With a stop but no
// duration the duration is derived, or left for Toggl to compute when
// either timestamp does not parse.
func completeForCreate(in domain.TimeEntryInput, nowUTC string) domain.TimeEntryInput {
	if in.Start == nil || *in.Start == "" {
		in.Start = domain.Ptr(nowUTC)
	}
	if in.Duration != nil {
		return in
	}
	if in.Stop == nil || *in.Stop == "" {
		in.Stop = nil
		in.Duration = domain.Ptr[int64](-1)
		return in
	}
	start, err1 := timeconv.ParseUTC(*in.Start)
	stop, err2 := timeconv.ParseUTC(*in.Stop)
	if err1 == nil && err2 == nil && !stop.Before(start) {
		in.Duration = domain.Ptr(int64(stop.Sub(start).Seconds()))
	}
	return in
}
