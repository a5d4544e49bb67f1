package filestore_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/adapter/filestore"
	"toggl-mcp/internal/domain"
)

func newStore(t *testing.T) (*filestore.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "toggl_mcp")
	s, err := filestore.New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s, dir
}

func TestPresets_RoundTripAndOrder(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	list, err := s.ListPresets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.SavePreset(ctx, domain.Preset{Name: "b", Tags: []string{"x"}}))
	require.NoError(t, s.SavePreset(ctx, domain.Preset{Name: "a", Billable: domain.Ptr(false)}))
	require.NoError(t, s.SavePreset(ctx, domain.Preset{Name: "b", Description: "updated"}))

	list, err = s.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name, "upsert keeps position")
	assert.Equal(t, "updated", list[0].Description)
	require.NotNil(t, list[1].Billable)
	assert.False(t, *list[1].Billable)

	raw, err := os.ReadFile(filepath.Join(dir, filestore.PresetsFile))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(1), doc["version"])
	assert.Len(t, doc["presets"], 2)
}

func TestPresets_GetDeleteNotFound(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.GetPreset(ctx, "nope")
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(s.DeletePreset(ctx, "nope")))

	require.NoError(t, s.SavePreset(ctx, domain.Preset{Name: "p"}))
	got, err := s.GetPreset(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "p", got.Name)
	require.NoError(t, s.DeletePreset(ctx, "p"))
	_, err = s.GetPreset(ctx, "p")
	assert.True(t, domain.IsNotFound(err))
}

func TestRecurring_RoundTrip(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()
	created := time.Date(2025, 6, 10, 6, 30, 0, 0, time.UTC)
	r := domain.RecurringEntry{
		ID:          "r1",
		Description: "Standup",
		ProjectID:   domain.Ptr[int64](5),
		WorkspaceID: 1,
		Schedule:    domain.Schedule{Frequency: domain.FrequencyWeekly, Days: []string{"monday"}},
		DurationSec: 900,
		CreatedAt:   created,
	}

	require.NoError(t, s.SaveRecurring(ctx, r))
	ran := created.Add(time.Hour)
	r.LastRun = &ran
	require.NoError(t, s.SaveRecurring(ctx, r))

	// a second store over the same directory sees the same data
	s2, err := filestore.New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	got, err := s2.GetRecurring(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
	require.NotNil(t, got.LastRun)
	assert.True(t, got.LastRun.Equal(ran))
	assert.Equal(t, r.Schedule, got.Schedule)

	list, err := s2.ListRecurring(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s2.DeleteRecurring(ctx, "r1"))
	assert.True(t, domain.IsNotFound(s2.DeleteRecurring(ctx, "r1")))
}

func TestCorruptFileIsStorageError(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filestore.PresetsFile), []byte("{not json"), 0o600))

	_, err := s.ListPresets(context.Background())

	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
}

func TestSave_RejectsMissingKeys(t *testing.T) {
	s, _ := newStore(t)

	assert.Equal(t, domain.CodeValidation, domain.CodeOf(s.SavePreset(context.Background(), domain.Preset{})))
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(s.SaveRecurring(context.Background(), domain.RecurringEntry{})))
}
