package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

// Store keeps the per-interaction sessions in process memory. A session is
// exclusively owned by its one interaction: Acquire locks it for the whole
// user action so one action runs to completion before the next is accepted.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// NewStore creates an empty session store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger.Named("SessionStore"),
	}
}

// Create makes a fresh session at the login page and returns it acquired.
// The release function must be called when the current action completes.
func (s *Store) Create() (*domain.Session, func()) {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Page:      domain.PageLogin,
		CreatedAt: time.Now().UTC(),
	}
	e := &entry{session: sess}

	s.mu.Lock()
	s.entries[sess.ID] = e
	s.mu.Unlock()

	s.logger.Debug("Session created", zap.String("session_id", sess.ID))

	e.mu.Lock()
	return sess, e.mu.Unlock
}

// Acquire locks the session for one user action and returns it together
// with its release function, or domain.ErrSessionNotFound.
func (s *Store) Acquire(id string) (*domain.Session, func(), error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}

	e.mu.Lock()
	return e.session, e.mu.Unlock, nil
}

// Delete removes a session. Safe to call for unknown IDs.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
