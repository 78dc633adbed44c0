package service

import (
	"time"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
)

// SessionInfo provides information about a maze session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Rows           int                `json:"rows"`
	Cols           int                `json:"cols"`
	Start          *grid.Coordinate   `json:"start,omitempty"`
	End            *grid.Coordinate   `json:"end,omitempty"`
	Running        bool               `json:"running"`
	TotalRuns      int                `json:"total_runs"`
	LastRun        *RunRecord         `json:"last_run,omitempty"`
	MazeConfig     *engine.MazeConfig `json:"maze_config"`
}

// SolveRequest selects the algorithm, endpoints and pacing for one solve.
// Nil endpoints fall back to the session's configuration.
type SolveRequest struct {
	Algorithm string           `json:"algorithm,omitempty"`
	Start     *grid.Coordinate `json:"start,omitempty"`
	End       *grid.Coordinate `json:"end,omitempty"`
	DelayMs   *int             `json:"delay_ms,omitempty"`
	MaxSteps  int              `json:"max_steps,omitempty"`
	Async     bool             `json:"async,omitempty"`
}

// StepFrame is one step of a running solve together with the grid as it
// looked right after the step.
type StepFrame struct {
	SessionID string        `json:"session_id"`
	RunID     string        `json:"run_id"`
	Step      engine.Step   `json:"step"`
	Grid      [][]grid.Code `json:"grid"`
}

// StepObserver receives every step of a solve, synchronously.
type StepObserver func(StepFrame)

// SolveResult is the outcome of a finished solve.
type SolveResult struct {
	SessionID string          `json:"session_id"`
	RunID     string          `json:"run_id"`
	Start     grid.Coordinate `json:"start"`
	End       grid.Coordinate `json:"end"`
	Result    *engine.Result  `json:"result"`
	Grid      [][]grid.Code   `json:"grid"`
	Rendered  string          `json:"rendered"`
}

// SolveTicket acknowledges a solve started in the background.
type SolveTicket struct {
	SessionID string           `json:"session_id"`
	RunID     string           `json:"run_id"`
	Algorithm engine.Algorithm `json:"algorithm"`
	Start     grid.Coordinate  `json:"start"`
	End       grid.Coordinate  `json:"end"`
	DelayMs   int              `json:"delay_ms"`
}

// RunRecord is the history entry kept for every finished solve.
type RunRecord struct {
	RunID      string           `json:"run_id"`
	Algorithm  engine.Algorithm `json:"algorithm"`
	Status     engine.Status    `json:"status"`
	Solved     bool             `json:"solved"`
	Start      grid.Coordinate  `json:"start"`
	End        grid.Coordinate  `json:"end"`
	PathLength int              `json:"path_length"`
	Steps      int              `json:"steps"`
	Explored   int              `json:"explored"`
	ElapsedMs  int64            `json:"elapsed_ms"`
	StartedAt  time.Time        `json:"started_at"`
	Cause      string           `json:"cause,omitempty"`
}

// GridState is a point-in-time view of a session grid.
type GridState struct {
	SessionID string           `json:"session_id"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	Cells     [][]grid.Code    `json:"cells"`
	Rendered  string           `json:"rendered"`
	Start     *grid.Coordinate `json:"start,omitempty"`
	End       *grid.Coordinate `json:"end,omitempty"`
	Running   bool             `json:"running"`
	Counts    map[string]int   `json:"counts"`
}

// CellInfo describes a single cell.
type CellInfo struct {
	Row           int       `json:"row"`
	Col           int       `json:"col"`
	Code          grid.Code `json:"code"`
	State         string    `json:"state"`
	Wall          bool      `json:"wall"`
	IsStart       bool      `json:"is_start"`
	IsEnd         bool      `json:"is_end"`
	OpenNeighbors []string  `json:"open_neighbors"`
}

// HistoryOptions configures run history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated run history
type HistoryResponse struct {
	Runs        []RunRecord `json:"runs"`
	TotalRuns   int         `json:"total_runs"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// ConfigInfo provides information about a maze configuration
type ConfigInfo struct {
	Filename    string           `json:"filename"`
	ConfigID    string           `json:"config_id"` // The identifier to use for session creation
	Name        string           `json:"name"`      // Display name
	Description string           `json:"description"`
	Rows        int              `json:"rows"`
	Cols        int              `json:"cols"`
	OpenCells   int              `json:"open_cells"`
	Start       *grid.Coordinate `json:"start,omitempty"`
	End         *grid.Coordinate `json:"end,omitempty"`
}
