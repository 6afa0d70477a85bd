package checkpoint

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps checkpoints in process memory. Intended for tests and
// short-lived CLI runs.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[string]entry
	seq    map[string]int
	closed bool
}

type entry struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]map[string]entry),
		seq:  make(map[string]int),
	}
}

func (m *MemoryStore) Save(_ context.Context, runID, nodeID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.runs[runID] == nil {
		m.runs[runID] = make(map[string]entry)
	}
	m.seq[runID]++

	m.runs[runID][nodeID] = entry{
		data:      slices.Clone(data),
		sequence:  m.seq[runID],
		timestamp: time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, runID, nodeID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	e, ok := m.runs[runID][nodeID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(e.data), nil
}

func (m *MemoryStore) List(_ context.Context, runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run := m.runs[runID]
	infos := make([]Info, 0, len(run))
	for nodeID, e := range run {
		infos = append(infos, Info{
			RunID:     runID,
			NodeID:    nodeID,
			Sequence:  e.sequence,
			Timestamp: e.timestamp,
			Size:      int64(len(e.data)),
		})
	}

	slices.SortFunc(infos, func(a, b Info) int {
		return a.Sequence - b.Sequence
	})
	return infos, nil
}

func (m *MemoryStore) Delete(_ context.Context, runID, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs[runID], nodeID)
	return nil
}

func (m *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs, runID)
	delete(m.seq, runID)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	m.seq = nil
	return nil
}

// Len returns the number of checkpoints across all runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		count += len(run)
	}
	return count
}
