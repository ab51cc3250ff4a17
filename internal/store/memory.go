package store

import (
	"context"
	"sync"

	"github.com/novapay/backend/internal/model/payment"
)

// MemoryStore implements Store with a guarded in-process map, suitable for
// single-instance deployments and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]payment.Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]payment.Session)}
}

// Get retrieves a session by identifier.
func (s *MemoryStore) Get(_ context.Context, id string) (payment.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return payment.Session{}, ErrNotFound
	}
	return session, nil
}

// Put stores a session, replacing any record under the same id.
func (s *MemoryStore) Put(_ context.Context, session payment.Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return nil
}

// Update applies mutate to the stored record under the map lock. Unknown ids
// return ErrNotFound without creating the key.
func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*payment.Session) error) (payment.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return payment.Session{}, ErrNotFound
	}

	if err := mutate(&session); err != nil {
		return payment.Session{}, err
	}

	s.sessions[id] = session
	return session, nil
}

var _ Store = (*MemoryStore)(nil)
