package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Session limits used by NewSessionStore.
const (
	DefaultSessionIdleTTL = 2 * time.Hour
	DefaultMaxSessions    = 1000
)

// SessionStore holds chat sessions in memory. A session expires after
// idleTTL without activity, and the least recently used session is evicted
// once maxSessions is reached.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
}

type sessionEntry struct {
	session  *domain.ChatSession
	lastUsed time.Time
}

// NewSessionStore creates a new in-memory session store with the default limits.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithLimits(DefaultSessionIdleTTL, DefaultMaxSessions)
}

// NewSessionStoreWithLimits creates a session store. A zero idleTTL or
// maxSessions disables that limit.
func NewSessionStoreWithLimits(idleTTL time.Duration, maxSessions int) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*sessionEntry),
		idleTTL:     idleTTL,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create starts a session for a document.
func (s *SessionStore) Create(_ context.Context, documentID string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	sess := &domain.ChatSession{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		CreatedAt:  now.UTC(),
	}
	s.sessions[sess.ID] = &sessionEntry{session: sess, lastUsed: now}
	return copySession(sess), nil
}

// Get returns a copy of the session and marks it as used.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	return copySession(e.session), nil
}

// Append adds turns to the end of a session.
func (s *SessionStore) Append(_ context.Context, id string, turns ...domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.liveLocked(id)
	if err != nil {
		return err
	}
	e.session.Turns = append(e.session.Turns, turns...)
	return nil
}

// Delete ends a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of sessions held, including expired ones not yet evicted.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// liveLocked returns an unexpired entry and refreshes its last use.
func (s *SessionStore) liveLocked(id string) (*sessionEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, domain.ErrNotFound
	}
	e.lastUsed = now
	return e, nil
}

func (s *SessionStore) expired(e *sessionEntry, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(e.lastUsed) > s.idleTTL
}

// evictLocked drops expired sessions, then the least recently used ones
// until there is room for one more.
func (s *SessionStore) evictLocked(now time.Time) {
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, e := range s.sessions {
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID, oldest = id, e.lastUsed
			}
		}
		delete(s.sessions, oldestID)
	}
}

func copySession(sess *domain.ChatSession) *domain.ChatSession {
	cp := *sess
	cp.Turns = append([]domain.ChatTurn(nil), sess.Turns...)
	return &cp
}
