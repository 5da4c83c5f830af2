package quiz

import "sync"

// Registry holds the active quiz session per user. A user has at most one
// active attempt; starting a new one replaces whatever was there, exactly as
// navigating between quizzes discards the previous attempt's state. The
// registry guards only its map: handlers for one user run serially, so the
// sessions themselves need no locking.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Put(userID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = s
}

func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// Discard drops the user's active session, if any. No state is persisted.
func (r *Registry) Discard(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}
