package tablestore

import (
	"context"
	"slices"
	"sync"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Memory is an in-process Store for tests and one-shot CLI runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]tablegraph.Record
	order   []string
	reports map[string]tablegraph.Report
	closed  bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]tablegraph.Record),
		reports: make(map[string]tablegraph.Report),
	}
}

func (m *Memory) Save(_ context.Context, rec tablegraph.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if _, exists := m.records[rec.RunID]; exists {
		m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == rec.RunID })
	}
	rec.Table = rec.Table.Clone()
	m.records[rec.RunID] = rec
	m.order = append(m.order, rec.RunID)
	return nil
}

func (m *Memory) SaveReport(_ context.Context, runID string, r tablegraph.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	r.Issues = slices.Clone(r.Issues)
	m.reports[runID] = r
	return nil
}

func (m *Memory) Get(_ context.Context, runID string) (tablegraph.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return tablegraph.Record{}, ErrStoreClosed
	}
	rec, ok := m.records[runID]
	if !ok {
		return tablegraph.Record{}, ErrNotFound
	}
	rec.Table = rec.Table.Clone()
	return rec, nil
}

func (m *Memory) Report(_ context.Context, runID string) (tablegraph.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return tablegraph.Report{}, ErrStoreClosed
	}
	r, ok := m.reports[runID]
	if !ok {
		return tablegraph.Report{}, ErrNotFound
	}
	r.Issues = slices.Clone(r.Issues)
	return r, nil
}

func (m *Memory) List(_ context.Context) ([]tablegraph.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	out := make([]tablegraph.Record, 0, len(m.order))
	for _, id := range m.order {
		rec := m.records[id]
		rec.Table = rec.Table.Clone()
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
