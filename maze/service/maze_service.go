package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSolveInProgress = errors.New("a solve is already running for this session")
	ErrNoActiveSolve   = errors.New("no solve is running for this session")
	ErrNoEndpoints     = errors.New("start and end must be given by the request or the maze config")
	ErrInvalidRequest  = errors.New("invalid request")
)

// MaxDelay caps the pacing delay applied after each step.
const MaxDelay = time.Second

// MazeService defines all maze-related operations
type MazeService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Solving
	Solve(ctx context.Context, sessionID string, req SolveRequest, observer StepObserver) (*SolveResult, error)
	SolveAsync(ctx context.Context, sessionID string, req SolveRequest, observer StepObserver, done func(*SolveResult, error)) (*SolveTicket, error)
	Cancel(ctx context.Context, sessionID string) error
	Reset(ctx context.Context, sessionID string) (*GridState, error)

	// Grid State
	GetGridState(ctx context.Context, sessionID string) (*GridState, error)
	DescribeCell(ctx context.Context, sessionID string, c grid.Coordinate) (*CellInfo, error)
	GetRunHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MazeConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MazeConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// Session represents an active maze session
type Session struct {
	ID        string
	Grid      *grid.Grid
	Config    *engine.MazeConfig
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
	runs         []RunRecord
	running      bool
	cancel       context.CancelFunc
}

// NewSession builds a session with a fresh grid from config.
func NewSession(id string, config *engine.MazeConfig) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: maze config is nil", ErrInvalidRequest)
	}
	g, err := config.Grid()
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	now := time.Now()
	return &Session{
		ID:           id,
		Grid:         g,
		Config:       config,
		CreatedAt:    now,
		lastAccessed: now,
	}, nil
}

// Touch records an access at the current time.
func (s *Session) Touch() {
	s.TouchAt(time.Now())
}

// TouchAt records an access at t.
func (s *Session) TouchAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time of the latest access.
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Idle reports whether the session has no solve in flight and was last
// used before cutoff.
func (s *Session) Idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && s.lastAccessed.Before(cutoff)
}

// Running reports whether a solve is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Runs returns a copy of the finished runs, oldest first.
func (s *Session) Runs() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}

// LastRun returns the most recent run, or nil.
func (s *Session) LastRun() *RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) == 0 {
		return nil
	}
	r := s.runs[len(s.runs)-1]
	return &r
}

func (s *Session) begin(cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSolveInProgress
	}
	s.running = true
	s.cancel = cancel
	return nil
}

// resetIfIdle clears the grid overlay unless a solve holds the run slot.
// The check and the reset happen under the same lock begin takes.
func (s *Session) resetIfIdle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSolveInProgress
	}
	s.Grid.Reset()
	return nil
}

// finish releases the session. A nil record means the run never started.
func (s *Session) finish(record *RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record != nil {
		s.runs = append(s.runs, *record)
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stop cancels the in-flight solve, if any, and reports whether one was
// running.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}
