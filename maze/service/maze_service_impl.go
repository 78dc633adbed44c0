package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/metrics"
	"github.com/wricardo/maze-solver/maze/render"
)

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewMazeService creates a new maze service instance
func NewMazeService(sessions SessionManager, configs ConfigManager) MazeService {
	return &mazeServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *mazeServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *mazeServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *mazeServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	rows, cols := sess.Grid.Dimensions()
	start, end := sess.Config.Endpoints()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		Rows:           rows,
		Cols:           cols,
		Start:          start,
		End:            end,
		Running:        sess.Running(),
		TotalRuns:      len(sess.Runs()),
		LastRun:        sess.LastRun(),
		MazeConfig:     sess.Config,
	}
}

// CreateSession creates a new maze session
func (s *mazeServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.MazeConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				configIDs := make([]string, 0, len(availableConfigs))
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("failed to load config '%s': %w (available configs: %v)", configName, err, configIDs)
			}
			return nil, fmt.Errorf("failed to load config '%s': %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *mazeServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *mazeServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession stops any running solve and removes the session
func (s *mazeServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.Stop()
	}
	return s.sessions.Delete(sessionID)
}

// pendingRun is a validated solve that holds the session's run slot.
type pendingRun struct {
	sess     *Session
	ctx      context.Context
	ticket   SolveTicket
	maxSteps int
	observer StepObserver
}

// prepare validates req against the session and claims the run slot.
func (s *mazeServiceImpl) prepare(ctx context.Context, sessionID string, req SolveRequest, observer StepObserver) (*pendingRun, error) {
	s.mu.RLock()
	sess, err := s.session(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	name := req.Algorithm
	if name == "" {
		name = string(sess.Config.Algorithm)
	}
	algo, err := engine.ParseAlgorithm(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start, end, err := resolveEndpoints(sess, req)
	if err != nil {
		return nil, err
	}

	delay := time.Duration(sess.Config.DelayMs) * time.Millisecond
	if req.DelayMs != nil {
		if *req.DelayMs < 0 {
			return nil, fmt.Errorf("%w: delay_ms cannot be negative", ErrInvalidRequest)
		}
		delay = time.Duration(*req.DelayMs) * time.Millisecond
	}
	if delay > MaxDelay {
		delay = MaxDelay
	}
	if req.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: max_steps cannot be negative", ErrInvalidRequest)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := sess.begin(cancel); err != nil {
		cancel()
		return nil, err
	}

	return &pendingRun{
		sess: sess,
		ctx:  runCtx,
		ticket: SolveTicket{
			SessionID: sess.ID,
			RunID:     uuid.NewString(),
			Algorithm: algo,
			Start:     start,
			End:       end,
			DelayMs:   int(delay / time.Millisecond),
		},
		maxSteps: req.MaxSteps,
		observer: observer,
	}, nil
}

// resolveEndpoints merges request and config endpoints and checks them
// against the grid before anything is written.
func resolveEndpoints(sess *Session, req SolveRequest) (grid.Coordinate, grid.Coordinate, error) {
	start, end := sess.Config.Endpoints()
	if req.Start != nil {
		start = req.Start
	}
	if req.End != nil {
		end = req.End
	}
	if start == nil || end == nil {
		return grid.Coordinate{}, grid.Coordinate{}, ErrNoEndpoints
	}
	for _, c := range []grid.Coordinate{*start, *end} {
		if !sess.Grid.InBounds(c) {
			rows, cols := sess.Grid.Dimensions()
			return grid.Coordinate{}, grid.Coordinate{}, fmt.Errorf("%w: %v in %dx%d", grid.ErrOutOfBounds, c, rows, cols)
		}
		if sess.Grid.IsWall(c) {
			return grid.Coordinate{}, grid.Coordinate{}, fmt.Errorf("%w: %v", engine.ErrInvalidEndpoint, c)
		}
	}
	return *start, *end, nil
}

// execute runs a prepared solve to completion and releases the session.
func (s *mazeServiceImpl) execute(r *pendingRun) (*SolveResult, error) {
	sess := r.sess
	t := r.ticket
	algoLabel := string(t.Algorithm)

	sess.Grid.Reset()
	done := metrics.SolveStarted()
	defer done()

	onStep := func(step engine.Step) error {
		metrics.ObserveStep(algoLabel)
		if r.observer != nil {
			r.observer(StepFrame{
				SessionID: t.SessionID,
				RunID:     t.RunID,
				Step:      step,
				Grid:      sess.Grid.Snapshot(),
			})
		}
		return nil
	}

	startedAt := time.Now()
	res, err := engine.Run(r.ctx, t.Algorithm, sess.Grid, t.Start, t.End, onStep,
		engine.WithDelay(time.Duration(t.DelayMs)*time.Millisecond),
		engine.WithMaxSteps(r.maxSteps),
	)
	if err != nil {
		sess.finish(nil)
		return nil, err
	}

	record := RunRecord{
		RunID:      t.RunID,
		Algorithm:  res.Algorithm,
		Status:     res.Status,
		Solved:     res.Solved,
		Start:      t.Start,
		End:        t.End,
		PathLength: res.Depth,
		Steps:      res.Steps,
		Explored:   res.Explored,
		ElapsedMs:  res.Elapsed.Milliseconds(),
		StartedAt:  startedAt,
	}
	if res.Cause != nil {
		record.Cause = res.Cause.Error()
	}
	sess.finish(&record)

	pathLen := -1
	if res.Solved {
		pathLen = res.Depth
	}
	metrics.ObserveSolve(algoLabel, string(res.Status), res.Elapsed, res.Steps, pathLen)

	snapshot := sess.Grid.Snapshot()
	return &SolveResult{
		SessionID: t.SessionID,
		RunID:     t.RunID,
		Start:     t.Start,
		End:       t.End,
		Result:    res,
		Grid:      snapshot,
		Rendered:  render.ASCII(snapshot, render.Endpoints{Start: &t.Start, End: &t.End}),
	}, nil
}

// Solve runs a search on the session grid and blocks until it ends.
// Cancelling ctx or calling Cancel stops it with status cancelled.
func (s *mazeServiceImpl) Solve(ctx context.Context, sessionID string, req SolveRequest, observer StepObserver) (*SolveResult, error) {
	r, err := s.prepare(ctx, sessionID, req, observer)
	if err != nil {
		return nil, err
	}
	return s.execute(r)
}

// SolveAsync validates the request, starts the search in the background and
// returns immediately. done, if set, receives the outcome. The solve is
// detached from ctx's cancellation; use Cancel to stop it.
func (s *mazeServiceImpl) SolveAsync(ctx context.Context, sessionID string, req SolveRequest, observer StepObserver, done func(*SolveResult, error)) (*SolveTicket, error) {
	r, err := s.prepare(context.WithoutCancel(ctx), sessionID, req, observer)
	if err != nil {
		return nil, err
	}
	ticket := r.ticket
	go func() {
		res, err := s.execute(r)
		if done != nil {
			done(res, err)
		}
	}()
	return &ticket, nil
}

// Cancel stops the running solve of a session
func (s *mazeServiceImpl) Cancel(ctx context.Context, sessionID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if !sess.Stop() {
		return ErrNoActiveSolve
	}
	return nil
}

// Reset clears every mark from the session grid
func (s *mazeServiceImpl) Reset(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.resetIfIdle(); err != nil {
		return nil, err
	}
	return gridState(sess), nil
}

// GetGridState returns the current grid of a session
func (s *mazeServiceImpl) GetGridState(ctx context.Context, sessionID string) (*GridState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return gridState(sess), nil
}

func gridState(sess *Session) *GridState {
	rows, cols := sess.Grid.Dimensions()
	snapshot := sess.Grid.Snapshot()
	start, end := shownEndpoints(sess)

	counts := make(map[string]int)
	for _, row := range snapshot {
		for _, code := range row {
			counts[code.String()]++
		}
	}

	return &GridState{
		SessionID: sess.ID,
		Rows:      rows,
		Cols:      cols,
		Cells:     snapshot,
		Rendered:  render.ASCII(snapshot, render.Endpoints{Start: start, End: end}),
		Start:     start,
		End:       end,
		Running:   sess.Running(),
		Counts:    counts,
	}
}

// shownEndpoints are the endpoints of the latest run, else the configured
// ones. The marks on the grid belong to that run.
func shownEndpoints(sess *Session) (start, end *grid.Coordinate) {
	if last := sess.LastRun(); last != nil {
		return &last.Start, &last.End
	}
	return sess.Config.Endpoints()
}

// DescribeCell reports the state of one cell and its open neighbors
func (s *mazeServiceImpl) DescribeCell(ctx context.Context, sessionID string, c grid.Coordinate) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	code, err := sess.Grid.Get(c)
	if err != nil {
		return nil, err
	}

	info := &CellInfo{
		Row:           c.Row,
		Col:           c.Col,
		Code:          code,
		State:         code.String(),
		Wall:          code == grid.Wall,
		OpenNeighbors: []string{},
	}
	start, end := shownEndpoints(sess)
	info.IsStart = start != nil && *start == c
	info.IsEnd = end != nil && *end == c

	for _, d := range grid.AllDirections() {
		n := grid.Neighbor(c, d)
		if sess.Grid.InBounds(n) && !sess.Grid.IsWall(n) {
			info.OpenNeighbors = append(info.OpenNeighbors, d.String())
		}
	}
	return info, nil
}

// GetRunHistory returns paginated run history
func (s *mazeServiceImpl) GetRunHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Runs()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	runs := []RunRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				runs = append(runs, history[i])
			}
		} else {
			runs = append(runs, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Runs:        runs,
		TotalRuns:   total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available maze configurations
func (s *mazeServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific maze configuration
func (s *mazeServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a maze configuration to disk
func (s *mazeServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(configName, config)
}
