package token

import "sync"

// MemoryStore keeps the token pair in process memory. It backs the Session
// persistence class and is also the store of choice in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetTokens overwrites both fields under one lock so readers never observe a
// half-updated pair. The persistence class is ignored: a memory store has
// exactly one tier.
func (s *MemoryStore) SetTokens(access, refresh string, _ PersistenceClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *MemoryStore) UpdateTokens(access, refresh string) error {
	return s.SetTokens(access, refresh, Session)
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}
