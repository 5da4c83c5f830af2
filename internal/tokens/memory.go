package tokens

import (
	"context"
	"sync"

	"github.com/edusync/gateway/internal/errors"
)

// MemoryStore is a process-local Store for tests and single-instance runs.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Set(_ context.Context, clientID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[clientID] = token
	return nil
}

func (s *MemoryStore) Get(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.tokens[clientID]
	if !ok {
		return "", errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("no token stored for client"))
	}

	return v, nil
}

func (s *MemoryStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, clientID)
	return nil
}
