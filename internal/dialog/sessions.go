package dialog

import (
	"sync"
	"time"
)

// DefaultMaxIdle is how long an untouched session survives a Sweep.
const DefaultMaxIdle = 24 * time.Hour

// Sessions stores one Session per sender id.
//
// Thread-safety: all methods are safe for concurrent use.
type Sessions struct {
	mu      sync.Mutex
	entries map[int64]*entry
	maxIdle time.Duration
	now     func() time.Time
}

type entry struct {
	sess    Session
	touched time.Time
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithMaxIdle sets the idle expiry used by Sweep.
func WithMaxIdle(d time.Duration) SessionsOption {
	return func(s *Sessions) { s.maxIdle = d }
}

// WithNow replaces the wall clock (tests).
func WithNow(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// NewSessions creates an empty session store.
func NewSessions(opts ...SessionsOption) *Sessions {
	s := &Sessions{
		entries: make(map[int64]*entry),
		maxIdle: DefaultMaxIdle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the sender's session; unknown senders are Idle.
func (s *Sessions) Get(sender int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sender]; ok {
		return e.sess
	}
	return Session{State: Idle}
}

// Put stores the sender's session. An Idle session with nothing offered is
// removed instead of stored.
func (s *Sessions) Put(sender int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.State == Idle && len(sess.Offered) == 0 && sess.Typed == "" {
		delete(s.entries, sender)
		return
	}
	s.entries[sender] = &entry{sess: sess, touched: s.now()}
}

// Sweep drops sessions idle for longer than the max idle time and returns
// how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.maxIdle)
	removed := 0
	for id, e := range s.entries {
		if e.touched.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
