package server

import (
	"errors"
	"sync"

	"hotseat/internal/game"
)

var errSessionNotFound = errors.New("session not found")

// SessionStore is a dumb keyed store for session aggregates. All
// concurrency control lives in the coordinator; implementations only
// guarantee that Load and Save are individually safe to call from
// multiple goroutines.
type SessionStore interface {
	// Load returns the session or errSessionNotFound.
	Load(id string) (*game.Session, error)
	Save(sess *game.Session) error
	Delete(id string) error
	IDs() ([]string, error)
}

// memoryStore keeps sessions in process memory. It clones on both load
// and save so a command that fails midway never leaks partial mutations
// into the stored aggregate.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]*game.Session)}
}

func (m *memoryStore) Load(id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return sess.Clone(), nil
}

func (m *memoryStore) Save(sess *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess.Clone()
	return nil
}

func (m *memoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) IDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
