package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionsUnknownTokenIsEmpty(t *testing.T) {
	s := NewSessions()
	assert.Empty(t, s.Get("no-such-token").Items)
	assert.Empty(t, s.Items("no-such-token"))
}

func TestSessionsDispatchAndGet(t *testing.T) {
	s := NewSessions()
	token := s.New()

	s.Dispatch(token, Action{Type: AddItem, Product: product("prod-1", "Casco", "100.00", 10)})

	got := s.Get(token)
	assert.Len(t, got.Items, 1)
	assert.True(t, got.Open)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSessions()
	a := s.New()
	b := s.New()

	s.Dispatch(a, Action{Type: AddItem, Product: product("prod-1", "Casco", "100.00", 10)})

	assert.Len(t, s.Get(a).Items, 1)
	assert.Empty(t, s.Get(b).Items)
}

func TestSessionsPurgeDropsIdle(t *testing.T) {
	s := NewSessions()
	clock := time.Now()
	s.now = func() time.Time { return clock }

	stale := s.New()
	s.Dispatch(stale, Action{Type: AddItem, Product: product("prod-1", "Casco", "100.00", 10)})

	clock = clock.Add(defaultIdleTTL + time.Minute)
	fresh := s.New()

	assert.Equal(t, 1, s.Purge())
	assert.Empty(t, s.Get(stale).Items)

	s.Dispatch(fresh, Action{Type: AddItem, Product: product("prod-2", "Guantes", "50.00", 5)})
	assert.Len(t, s.Get(fresh).Items, 1)
}

func TestSessionsActivityRefreshesTTL(t *testing.T) {
	s := NewSessions()
	clock := time.Now()
	s.now = func() time.Time { return clock }

	token := s.New()

	clock = clock.Add(defaultIdleTTL - time.Minute)
	s.Get(token)

	clock = clock.Add(time.Hour)
	assert.Equal(t, 0, s.Purge())
}
