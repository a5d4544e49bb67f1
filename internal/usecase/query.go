package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

// QueryEngine fetches the full entry list once per call and filters it in
// memory. Nothing is cached between calls.
type QueryEngine struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
}

func (q *QueryEngine) fetch(ctx context.Context) ([]domain.TimeEntry, error) {
	if q.Toggl == nil {
		return nil, errors.New("query engine not initialized: missing toggl client")
	}
	entries, err := q.Toggl.ListTimeEntries(ctx)
	if err != nil {
		return nil, err
	}
	q.Log.Debug("fetched time entries", slog.Int("count", len(entries)))
	return entries, nil
}

// EntriesInRange keeps entries whose start lies in [r.Start, r.End].
// Both ends are inclusive, so an entry starting exactly at r.End is
// returned even though DateRange is half-open.
func (q *QueryEngine) EntriesInRange(ctx context.Context, r domain.DateRange) ([]domain.TimeEntry, error) {
	entries, err := q.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.TimeEntry{}
	for _, e := range entries {
		if e.Start != "" && r.Start <= e.Start && e.Start <= r.End {
			out = append(out, e)
		}
	}
	return out, nil
}

// Search returns the entries matching c in backend order.
func (q *QueryEngine) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.TimeEntry, error) {
	entries, err := q.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.TimeEntry{}
	for _, e := range entries {
		if Matches(e, c) {
			out = append(out, e)
		}
	}
	q.Log.Debug("search done", slog.Int("matched", len(out)), slog.Int("scanned", len(entries)))
	return out, nil
}

// FullTextSearch matches entries where any of fields contains query.
// fields defaults to description; unknown or non-string fields are skipped.
func (q *QueryEngine) FullTextSearch(ctx context.Context, query string, fields []string, caseSensitive bool) ([]domain.TimeEntry, error) {
	if len(fields) == 0 {
		fields = []string{"description"}
	}
	entries, err := q.fetch(ctx)
	if err != nil {
		return nil, err
	}
	needle := query
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}
	out := []domain.TimeEntry{}
	for _, e := range entries {
		for _, f := range fields {
			v, ok := e.StringField(f)
			if !ok {
				continue
			}
			if !caseSensitive {
				v = strings.ToLower(v)
			}
			if strings.Contains(v, needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}
