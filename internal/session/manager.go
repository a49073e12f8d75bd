package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager owns every live session, keyed by ID.
type Manager struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex

	ttl time.Duration
	now func() time.Time
	log logrus.FieldLogger
}

// NewManager returns a manager that forgets sessions idle for longer than
// ttl. A ttl of zero keeps sessions forever.
func NewManager(ttl time.Duration, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Create starts a fresh session with a random ID.
func (m *Manager) Create() *Session {
	s := New(uuid.New(), m.now())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.WithField("session", s.ID).Debug("session created")
	return s
}

// Get looks up a session and marks it as used.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// GetOrCreate resolves the session for a raw cookie value. Missing,
// malformed or expired IDs get a new session; created reports which case
// happened.
func (m *Manager) GetOrCreate(raw string) (s *Session, created bool) {
	if id, err := uuid.Parse(raw); err == nil {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Delete drops a session.
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many
// were dropped.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Touched().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.log.WithFields(logrus.Fields{"expired": n, "live": len(m.sessions)}).Info("swept idle sessions")
	}
	return n
}

// Run sweeps periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			m.Sweep(t)
		}
	}
}
