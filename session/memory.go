package session

import (
	"context"
	"sync"

	"next_read/models"
)

// MemoryStore keeps state in process memory. LoadErr and SaveErr simulate a failing backend.
type MemoryStore struct {
	mu      sync.Mutex
	state   models.SessionState
	saved   bool
	saves   int
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store preloaded with state.
func NewMemoryStore(state models.SessionState) *MemoryStore {
	return &MemoryStore{state: state.Normalize().Clone(), saved: true}
}

func (m *MemoryStore) Load(ctx context.Context) (models.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.NewSessionState(), &PersistenceError{Op: "load", Err: m.LoadErr}
	}
	if !m.saved {
		return models.NewSessionState(), nil
	}
	return m.state.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, state models.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return &PersistenceError{Op: "save", Err: m.SaveErr}
	}
	m.state = state.Normalize().Clone()
	m.saved = true
	m.saves++
	return nil
}

// Saves returns how many successful saves happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot returns the last saved state.
func (m *MemoryStore) Snapshot() models.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}
