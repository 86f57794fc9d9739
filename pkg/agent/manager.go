package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxSessions bounds the sessions a Manager keeps in memory.
const DefaultMaxSessions = 1000

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager isolates sessions from each other: every session id gets its own
// Session and SessionHistory. When the limit is reached the least recently
// used session is dropped.
type Manager struct {
	engine      *Engine
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*managedSession

	nowFunc func() time.Time
}

// NewManager creates a session manager. maxSessions <= 0 uses
// DefaultMaxSessions.
func NewManager(engine *Engine, maxSessions int) *Manager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Manager{
		engine:      engine,
		maxSessions: maxSessions,
		sessions:    make(map[string]*managedSession),
		nowFunc:     time.Now,
	}
}

// Engine returns the shared engine.
func (m *Manager) Engine() *Engine {
	return m.engine
}

// Session returns the session for id. An empty or malformed id, or an id
// that is not a UUID, gets a new session with a fresh id; created reports
// whether a session was created.
func (m *Manager) Session(id string) (session *Session, created bool) {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	} else {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	if ms, ok := m.sessions[id]; ok {
		ms.lastUsed = now
		return ms.session, false
	}
	if len(m.sessions) >= m.maxSessions {
		m.evictLocked()
	}
	s := m.engine.NewSession(id)
	m.sessions[id] = &managedSession{session: s, lastUsed: now}
	m.engine.logger.Debug("Created session", "session", id, "sessions", len(m.sessions))
	return s, true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) evictLocked() {
	var oldestID string
	var oldest time.Time
	for id, ms := range m.sessions {
		if oldestID == "" || ms.lastUsed.Before(oldest) {
			oldestID, oldest = id, ms.lastUsed
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
		m.engine.logger.Debug("Evicted idle session", "session", oldestID)
	}
}
