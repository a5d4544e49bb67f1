package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

// Store implements ports.PresetStore on the timer_presets and
// recurring_entries tables created by internal/migrate.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

var _ ports.PresetStore = (*Store)(nil)

// NewStore opens a MySQL connection using the provided DSN. parseTime is
// forced on since rows carry DATETIME columns.
// Example DSN: user:pass@tcp(host:3306)/dbname
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

func storageErr(err error, msg string) error {
	return domain.Wrap(domain.CodeStorage, err, msg)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (s *Store) SavePreset(ctx context.Context, p domain.Preset) error {
	tags, err := encodeJSON(p.Tags)
	if err != nil {
		return storageErr(err, "encode preset tags")
	}
	const q = `
INSERT INTO timer_presets
  (name, description, project_name, workspace_name, tags, billable, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  description=VALUES(description),
  project_name=VALUES(project_name),
  workspace_name=VALUES(workspace_name),
  tags=VALUES(tags),
  billable=VALUES(billable),
  updated_at=VALUES(updated_at);
`
	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx, q,
		p.Name, p.Description, p.ProjectName, p.WorkspaceName, tags, nullable(p.Billable), now, now,
	); err != nil {
		return storageErr(err, "Failed to save preset '"+p.Name+"'")
	}
	s.log.Debug("mysql preset upserted", slog.String("name", p.Name))
	return nil
}

const presetColumns = `name, COALESCE(description, ''), COALESCE(project_name, ''), COALESCE(workspace_name, ''), tags, billable`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(r rowScanner) (domain.Preset, error) {
	var (
		p        domain.Preset
		tags     sql.NullString
		billable sql.NullBool
	)
	if err := r.Scan(&p.Name, &p.Description, &p.ProjectName, &p.WorkspaceName, &tags, &billable); err != nil {
		return domain.Preset{}, err
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
			return domain.Preset{}, err
		}
	}
	if billable.Valid {
		p.Billable = domain.Ptr(billable.Bool)
	}
	return p, nil
}

func (s *Store) GetPreset(ctx context.Context, name string) (domain.Preset, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+presetColumns+" FROM timer_presets WHERE name = ?", name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Preset{}, domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name)
	}
	if err != nil {
		return domain.Preset{}, storageErr(err, "load preset")
	}
	return p, nil
}

func (s *Store) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+presetColumns+" FROM timer_presets ORDER BY created_at, name")
	if err != nil {
		return nil, storageErr(err, "list presets")
	}
	defer rows.Close()
	out := []domain.Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, storageErr(err, "scan preset")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list presets")
	}
	return out, nil
}

func (s *Store) deleteOne(ctx context.Context, q, key string, notFound *domain.Error) error {
	res, err := s.db.ExecContext(ctx, q, key)
	if err != nil {
		return storageErr(err, "delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err, "delete")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (s *Store) DeletePreset(ctx context.Context, name string) error {
	return s.deleteOne(ctx, "DELETE FROM timer_presets WHERE name = ?", name,
		domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name))
}

func (s *Store) SaveRecurring(ctx context.Context, r domain.RecurringEntry) error {
	tags, err := encodeJSON(r.Tags)
	if err != nil {
		return storageErr(err, "encode recurring tags")
	}
	schedule, err := encodeJSON(r.Schedule)
	if err != nil {
		return storageErr(err, "encode schedule")
	}
	const q = `
INSERT INTO recurring_entries
  (id, description, project_name, project_id, workspace_name, workspace_id, tags, billable, schedule, duration_sec, created_at, last_run)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  description=VALUES(description),
  project_name=VALUES(project_name),
  project_id=VALUES(project_id),
  workspace_name=VALUES(workspace_name),
  workspace_id=VALUES(workspace_id),
  tags=VALUES(tags),
  billable=VALUES(billable),
  schedule=VALUES(schedule),
  duration_sec=VALUES(duration_sec),
  last_run=VALUES(last_run);
`
	var lastRun any
	if r.LastRun != nil {
		lastRun = r.LastRun.UTC()
	}
	if _, err := s.db.ExecContext(ctx, q,
		r.ID, r.Description, r.ProjectName, nullable(r.ProjectID), r.WorkspaceName, r.WorkspaceID,
		tags, r.Billable, schedule, r.DurationSec, r.CreatedAt.UTC(), lastRun,
	); err != nil {
		return storageErr(err, "Failed to save recurring entry configuration")
	}
	s.log.Debug("mysql recurring entry upserted", slog.String("id", r.ID))
	return nil
}

const recurringColumns = `id, COALESCE(description, ''), COALESCE(project_name, ''), project_id, COALESCE(workspace_name, ''),
  workspace_id, tags, billable, schedule, duration_sec, created_at, last_run`

func scanRecurring(row rowScanner) (domain.RecurringEntry, error) {
	var (
		r         domain.RecurringEntry
		projectID sql.NullInt64
		tags      sql.NullString
		schedule  string
		lastRun   sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.Description, &r.ProjectName, &projectID, &r.WorkspaceName,
		&r.WorkspaceID, &tags, &r.Billable, &schedule, &r.DurationSec, &r.CreatedAt, &lastRun); err != nil {
		return domain.RecurringEntry{}, err
	}
	if projectID.Valid {
		r.ProjectID = domain.Ptr(projectID.Int64)
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &r.Tags); err != nil {
			return domain.RecurringEntry{}, err
		}
	}
	if err := json.Unmarshal([]byte(schedule), &r.Schedule); err != nil {
		return domain.RecurringEntry{}, err
	}
	if lastRun.Valid {
		t := lastRun.Time.UTC()
		r.LastRun = &t
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *Store) GetRecurring(ctx context.Context, id string) (domain.RecurringEntry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recurringColumns+" FROM recurring_entries WHERE id = ?", id)
	r, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RecurringEntry{}, domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id)
	}
	if err != nil {
		return domain.RecurringEntry{}, storageErr(err, "load recurring entry")
	}
	return r, nil
}

func (s *Store) ListRecurring(ctx context.Context) ([]domain.RecurringEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recurringColumns+" FROM recurring_entries ORDER BY created_at, id")
	if err != nil {
		return nil, storageErr(err, "list recurring entries")
	}
	defer rows.Close()
	out := []domain.RecurringEntry{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, storageErr(err, "scan recurring entry")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list recurring entries")
	}
	return out, nil
}

func (s *Store) DeleteRecurring(ctx context.Context, id string) error {
	return s.deleteOne(ctx, "DELETE FROM recurring_entries WHERE id = ?", id,
		domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id))
}

// Close closes the underlying DB.
func (s *Store) Close() error { return s.db.Close() }
