// Package session keeps the ephemeral per-login state that used to live
// in flat UI flags: which rows have an armed delete confirmation and
// whether this session already ran a spreadsheet import. Everything here
// is process-local and vanishes on restart.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the state for one logged-in user
type Session struct {
	ID       string
	Username string
	Role     string

	mu           sync.Mutex
	armedDeletes map[string]struct{}
	importDone   bool
}

// ArmDelete marks the product key as awaiting delete confirmation. The
// flag has no expiry; it is cleared by commit, cancel or a new search.
func (s *Session) ArmDelete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armedDeletes[key] = struct{}{}
}

// DeleteArmed reports whether the key has an armed confirmation
func (s *Session) DeleteArmed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armedDeletes[key]
	return ok
}

// DisarmDelete clears the armed confirmation for the key
func (s *Session) DisarmDelete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armedDeletes, key)
}

// ClearArmedDeletes drops every armed confirmation, called when the user
// navigates away by running a new search
func (s *Session) ClearArmedDeletes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armedDeletes = make(map[string]struct{})
}

// ImportDone reports whether a spreadsheet import already ran this session
func (s *Session) ImportDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importDone
}

// MarkImportDone records that a spreadsheet import completed
func (s *Session) MarkImportDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importDone = true
}

// Manager holds the active sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for the user and returns it
func (m *Manager) Create(username, role string) *Session {
	sess := &Session{
		ID:           uuid.New().String(),
		Username:     username,
		Role:         role,
		armedDeletes: make(map[string]struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess

	return sess
}

// Get returns the session with the given id, if it exists
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}
