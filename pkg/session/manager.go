package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Manager tracks active sessions and evicts idle ones. Sessions are held in
// memory only; restarting the process drops everything, by design.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

const (
	defaultTTL    = 30 * time.Minute
	sweepInterval = time.Minute
)

// NewManager creates a session manager. A ttl of 0 uses the default.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
}

// Create registers a new session in the welcome state.
func (m *Manager) Create() *Session {
	s := newSession()
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id and refreshes its activity
// timestamp.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
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

// StartCleanup runs the stale-session sweep until Stop is called.
func (m *Manager) StartCleanup() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.evictStale(time.Now())
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the cleanup loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) evictStale(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastActivity)
		s.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			log.Debug().Str("session", id).Dur("idle", idle).Msg("evicted stale session")
		}
	}
}
