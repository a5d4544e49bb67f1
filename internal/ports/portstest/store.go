package portstest

import (
	"context"
	"sync"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

// MemoryStore is an in-memory ports.PresetStore that keeps insertion order.
type MemoryStore struct {
	mu        sync.Mutex
	presets   []domain.Preset
	recurring []domain.RecurringEntry
}

var _ ports.PresetStore = (*MemoryStore)(nil)

func (m *MemoryStore) SavePreset(_ context.Context, p domain.Preset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.presets {
		if m.presets[i].Name == p.Name {
			m.presets[i] = p
			return nil
		}
	}
	m.presets = append(m.presets, p)
	return nil
}

func (m *MemoryStore) GetPreset(_ context.Context, name string) (domain.Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.presets {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Preset{}, domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name)
}

func (m *MemoryStore) ListPresets(context.Context) ([]domain.Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Preset{}, m.presets...), nil
}

func (m *MemoryStore) DeletePreset(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.presets {
		if p.Name == name {
			m.presets = append(m.presets[:i], m.presets[i+1:]...)
			return nil
		}
	}
	return domain.Errorf(domain.CodeNotFound, "No preset found with name '%s'", name)
}

func (m *MemoryStore) SaveRecurring(_ context.Context, r domain.RecurringEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recurring {
		if m.recurring[i].ID == r.ID {
			m.recurring[i] = r
			return nil
		}
	}
	m.recurring = append(m.recurring, r)
	return nil
}

func (m *MemoryStore) GetRecurring(_ context.Context, id string) (domain.RecurringEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recurring {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.RecurringEntry{}, domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id)
}

func (m *MemoryStore) ListRecurring(context.Context) ([]domain.RecurringEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RecurringEntry{}, m.recurring...), nil
}

func (m *MemoryStore) DeleteRecurring(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.recurring {
		if r.ID == id {
			m.recurring = append(m.recurring[:i], m.recurring[i+1:]...)
			return nil
		}
	}
	return domain.Errorf(domain.CodeNotFound, "No recurring entry found with ID '%s'", id)
}
