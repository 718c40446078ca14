// Package session keeps the logged-in state of a user as an explicit object
// that front ends create at login and destroy at logout.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session identifies the authenticated user of a request or chat.
type Session struct {
	ID        string
	Username  string
	FullName  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// sweepInterval bounds how often Create drops expired sessions.
const sweepInterval = time.Minute

// Manager stores sessions in memory. A session lives until it is destroyed
// or its TTL passes; the number of sessions is not capped.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	sessions  map[string]Session
	lastSweep time.Time
}

func NewManager(ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}, nil
}

// Create starts a session for an authenticated user.
func (m *Manager) Create(username, fullName string) (*Session, error) {
	now := m.now()
	s := Session{
		ID:        uuid.New().String(),
		Username:  username,
		FullName:  fullName,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	m.sessions[s.ID] = s
	return &s, nil
}

// sweep drops expired sessions. m.mu must be held.
func (m *Manager) sweep(now time.Time) {
	for id, s := range m.sessions {
		if s.expired(now) {
			delete(m.sessions, id)
		}
	}
	m.lastSweep = now
}

// Get returns the live session with this id.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(m.now()) {
		delete(m.sessions, id)
		return nil, false
	}
	return &s, true
}

// Destroy ends the session. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports how many sessions are stored, expired ones not yet swept
// included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close drops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	m.sessions = make(map[string]Session)
	m.mu.Unlock()
}
