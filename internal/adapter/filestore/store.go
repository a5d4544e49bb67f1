// Package filestore keeps presets and recurring entries in JSON files.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

const (
	PresetsFile   = "presets.json"
	RecurringFile = "recurring.json"
	formatVersion = 1
)

type presetsDoc struct {
	Version int             `json:"version"`
	Presets []domain.Preset `json:"presets"`
}

type recurringDoc struct {
	Version          int                     `json:"version"`
	RecurringEntries []domain.RecurringEntry `json:"recurring_entries"`
}

// Store implements ports.PresetStore. Every call reads the file, and every
// write rewrites it through a temp file and rename.
type Store struct {
	dir string
	log *slog.Logger
	mu  sync.Mutex
}

var _ ports.PresetStore = (*Store)(nil)

// New creates dir if needed and returns a store rooted there.
func New(dir string, log *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// load decodes name into v. A missing file leaves v untouched.
func (s *Store) load(name string, v any) error {
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.Wrap(domain.CodeStorage, err, "read "+name)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return domain.Wrap(domain.CodeStorage, err, "decode "+name)
	}
	return nil
}

func (s *Store) save(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.Wrap(domain.CodeStorage, err, "encode "+name)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return domain.Wrap(domain.CodeStorage, err, "write "+name)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return domain.Wrap(domain.CodeStorage, err, "write "+name)
	}
	if err := tmp.Close(); err != nil {
		return domain.Wrap(domain.CodeStorage, err, "write "+name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return domain.Wrap(domain.CodeStorage, err, "write "+name)
	}
	s.log.Debug("filestore saved", slog.String("file", name))
	return nil
}

func (s *Store) loadPresets() (presetsDoc, error) {
	doc := presetsDoc{Version: formatVersion}
	err := s.load(PresetsFile, &doc)
	return doc, err
}

func (s *Store) SavePreset(_ context.Context, p domain.Preset) error {
	if p.Name == "" {
		return domain.Errorf(domain.CodeValidation, "preset name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadPresets()
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.Presets {
		if doc.Presets[i].Name == p.Name {
			doc.Presets[i], replaced = p, true
			break
		}
	}
	if !replaced {
		doc.Presets = append(doc.Presets, p)
	}
	return s.save(PresetsFile, doc)
}

func (s *Store) GetPreset(_ context.Context, name string) (domain.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadPresets()
	if err != nil {
		return domain.Preset{}, err
	}
	for _, p := range doc.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Preset{}, domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name)
}

func (s *Store) ListPresets(context.Context) ([]domain.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadPresets()
	if err != nil {
		return nil, err
	}
	if doc.Presets == nil {
		return []domain.Preset{}, nil
	}
	return doc.Presets, nil
}

func (s *Store) DeletePreset(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadPresets()
	if err != nil {
		return err
	}
	kept := doc.Presets[:0]
	for _, p := range doc.Presets {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(doc.Presets) {
		return domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name)
	}
	doc.Presets = kept
	return s.save(PresetsFile, doc)
}

func (s *Store) loadRecurring() (recurringDoc, error) {
	doc := recurringDoc{Version: formatVersion}
	err := s.load(RecurringFile, &doc)
	return doc, err
}

func (s *Store) SaveRecurring(_ context.Context, r domain.RecurringEntry) error {
	if r.ID == "" {
		return domain.Errorf(domain.CodeValidation, "recurring entry id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadRecurring()
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.RecurringEntries {
		if doc.RecurringEntries[i].ID == r.ID {
			doc.RecurringEntries[i], replaced = r, true
			break
		}
	}
	if !replaced {
		doc.RecurringEntries = append(doc.RecurringEntries, r)
	}
	return s.save(RecurringFile, doc)
}

func (s *Store) GetRecurring(_ context.Context, id string) (domain.RecurringEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadRecurring()
	if err != nil {
		return domain.RecurringEntry{}, err
	}
	for _, r := range doc.RecurringEntries {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.RecurringEntry{}, domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id)
}

func (s *Store) ListRecurring(context.Context) ([]domain.RecurringEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadRecurring()
	if err != nil {
		return nil, err
	}
	if doc.RecurringEntries == nil {
		return []domain.RecurringEntry{}, nil
	}
	return doc.RecurringEntries, nil
}

func (s *Store) DeleteRecurring(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadRecurring()
	if err != nil {
		return err
	}
	kept := doc.RecurringEntries[:0]
	for _, r := range doc.RecurringEntries {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(doc.RecurringEntries) {
		return domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id)
	}
	doc.RecurringEntries = kept
	return s.save(RecurringFile, doc)
}
