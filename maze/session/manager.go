package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/metrics"
	"github.com/wricardo/maze-solver/maze/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps maze sessions in memory, keyed by lower-cased ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*service.Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*service.Session)}
}

func key(id string) string { return strings.ToLower(id) }

// Create registers a session for config. An empty id gets a random
// 4 hex digit one.
func (m *Manager) Create(id string, config *engine.MazeConfig) (*service.Session, error) {
	if strings.ContainsAny(id, " /\\") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.freeID()
	} else if _, taken := m.sessions[key(id)]; taken {
		return nil, ErrSessionAlreadyExists
	}

	s, err := service.NewSession(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.sessions[key(id)] = s
	m.publish()
	return s, nil
}

func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) GetOrCreate(id string, config *engine.MazeConfig) (*service.Session, error) {
	s, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return s, err
}

// List returns the sessions in no particular order.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	m.publish()
	return nil
}

func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	s.Touch()
	return nil
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge and
// returns how many went. A session with a solve in flight is never idle.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.sessions)
	for k, s := range m.sessions {
		if s.Idle(cutoff) {
			delete(m.sessions, k)
		}
	}
	m.publish()
	return before - len(m.sessions)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// publish exports the session count. Callers hold m.mu.
func (m *Manager) publish() {
	metrics.SetSessions(len(m.sessions))
}

// freeID picks an unused random ID. Callers hold m.mu.
func (m *Manager) freeID() string {
	var b [2]byte
	for {
		rand.Read(b[:])
		if id := hex.EncodeToString(b[:]); m.sessions[id] == nil {
			return id
		}
	}
}
