package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jinseok-oh/minwon-kiosk/internal/model/conversation"
)

// Session is one kiosk conversation with its append-only history.
// All history access goes through the session's own lock, so operations on
// different sessions never contend with each other.
type Session struct {
	id        string
	createdAt time.Time

	mu    sync.Mutex
	turns []conversation.Turn
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was first seen.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Transcript returns a copy of the session history.
func (s *Session) Transcript() []conversation.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]conversation.Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// Exchange runs fn under the session lock with a snapshot of the current
// history and appends the turns fn returns. When fn errors nothing is
// appended, so the history only ever reflects completed exchanges. Because
// the lock is held across fn, concurrent exchanges on the same session are
// serialized; the caller is responsible for bounding slow work inside fn
// with a context timeout.
func (s *Session) Exchange(fn func(history []conversation.Turn) ([]conversation.Turn, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]conversation.Turn, len(s.turns))
	copy(snapshot, s.turns)

	appended, err := fn(snapshot)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, turn := range appended {
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = now
		}
		s.turns = append(s.turns, turn)
	}
	return nil
}

// Store is the process-wide session registry. Entries are created lazily and
// live until process shutdown; eviction is intentionally out of scope.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating an empty one when the id
// has not been seen before. A client-supplied unknown id is adopted as-is so
// the kiosk front-end can keep the id it was handed. An empty id mints a
// fresh identifier.
func (s *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.RLock()
	existing, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return existing
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing
	}
	created := &Session{id: id, createdAt: time.Now().UTC()}
	s.sessions[id] = created
	return created
}

// Get returns the session for id without creating one.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
