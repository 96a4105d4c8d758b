package runs

import (
	"fmt"
	"sync"
)

// MaxRecords bounds the persisted history; the oldest records are dropped.
const MaxRecords = 200

// Manager manages run records with persistence
type Manager struct {
	store   *Store
	records []*Record
	mu      sync.RWMutex
}

// NewManager creates a manager backed by the history file at filePath.
func NewManager(filePath string) (*Manager, error) {
	store := NewStore(filePath)

	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:   store,
		records: records,
	}, nil
}

// Add appends a new record and persists the history.
func (m *Manager) Add(record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	if len(m.records) > MaxRecords {
		m.records = m.records[len(m.records)-MaxRecords:]
	}

	return m.store.Save(m.records)
}

// All returns all records, oldest first.
func (m *Manager) All() []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Record, len(m.records))
	copy(result, m.records)
	return result
}

// Get returns the record whose ID starts with id.
func (m *Manager) Get(id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.find(id)
}

// Transition moves a record to a new status.
func (m *Manager) Transition(id string, status Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.find(id)
	if err != nil {
		return err
	}
	if !record.TransitionStatus(status, reason) {
		return fmt.Errorf("cannot transition run %s from %s to %s", id, record.Status, status)
	}
	return m.store.Save(m.records)
}

// Finish records execution outcomes and moves an executing record to
// completed or failed.
func (m *Manager) Finish(id string, outcomes []TaskOutcome, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.find(id)
	if err != nil {
		return err
	}

	target := StatusCompleted
	for _, o := range outcomes {
		if o.Error != "" {
			target = StatusFailed
			break
		}
	}
	if reason != "" {
		target = StatusFailed
	}

	if !record.TransitionStatus(target, reason) {
		return fmt.Errorf("cannot transition run %s from %s to %s", id, record.Status, target)
	}
	record.Outcomes = outcomes
	return m.store.Save(m.records)
}

func (m *Manager) find(id string) (*Record, error) {
	var match *Record
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
		if len(id) >= 4 && len(r.ID) >= len(id) && r.ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("run id %s is ambiguous", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return match, nil
}
