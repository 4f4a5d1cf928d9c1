package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"shekinah-backend/internal/domain"
)

const defaultIdleTTL = 6 * time.Hour

type session struct {
	state    State
	lastSeen time.Time
}

// Sessions holds one cart state per opaque session token. Carts are in-memory
// only; an idle session is dropped entirely, which is the server rendering of
// "cart state is lost on page reload".
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		idleTTL:  defaultIdleTTL,
		now:      time.Now,
	}
}

// New creates a session and returns its token.
func (s *Sessions) New() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &session{lastSeen: s.now()}
	return token
}

// Get returns the current state for a token. Unknown tokens yield an empty
// cart rather than an error: an expired session and a fresh one look the same.
func (s *Sessions) Get(token string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return State{}
	}
	sess.lastSeen = s.now()
	return sess.state
}

// Dispatch applies an action to the session's cart and returns the new state.
func (s *Sessions) Dispatch(token string, a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		sess = &session{}
		s.sessions[token] = sess
	}
	sess.lastSeen = s.now()
	sess.state = Reduce(sess.state, a)
	return sess.state
}

// Items returns a copy of the session's cart items.
func (s *Sessions) Items(token string) []domain.CartItem {
	return copyItems(s.Get(token).Items)
}

// Purge drops sessions idle for longer than the TTL and reports how many were
// removed.
func (s *Sessions) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for token, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// PurgeLoop runs Purge periodically until the context is cancelled.
func (s *Sessions) PurgeLoop(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.Purge()
		}
	}
}
