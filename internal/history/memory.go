package history

import (
	"sync"

	"theo-discovery/internal/domain"
)

var _ domain.SnapshotHistory = (*Memory)(nil)

// Memory is a process-local snapshot history.
type Memory struct {
	mu        sync.RWMutex
	snapshots []domain.CorpusSnapshotSummary
}

// NewMemory returns a history seeded with the given snapshots.
func NewMemory(seed ...domain.CorpusSnapshotSummary) *Memory {
	m := &Memory{}
	m.snapshots = append(m.snapshots, seed...)
	return m
}

func (m *Memory) Append(snapshot domain.CorpusSnapshotSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *Memory) Recent(limit int) ([]domain.CorpusSnapshotSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return recent(m.snapshots, limit), nil
}

// Len returns the number of stored snapshots.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Clear drops every snapshot.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = nil
}
