package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/maze-solver/maze/grid"
)

var (
	ErrInvalidEndpoint  = errors.New("engine: start or end is a wall")
	ErrNilBoard         = errors.New("engine: board is nil")
	ErrOptionViolation  = errors.New("engine: invalid option supplied")
	ErrUnknownAlgorithm = errors.New("engine: unknown algorithm")
	ErrStepLimit        = errors.New("engine: step limit reached")
)

// Board is the cell store a search runs against. *grid.Grid satisfies it.
type Board interface {
	Get(c grid.Coordinate) (grid.Code, error)
	Set(c grid.Coordinate, code grid.Code) error
	Dimensions() (height, width int)
}

// Algorithm selects the search strategy.
type Algorithm string

const (
	BFS          Algorithm = "bfs"
	WallFollower Algorithm = "wall-follower"
)

// Algorithms lists every supported strategy.
func Algorithms() []Algorithm {
	return []Algorithm{BFS, WallFollower}
}

// ParseAlgorithm maps a user supplied name to an Algorithm. Empty means BFS.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bfs", "breadth-first":
		return BFS, nil
	case "wall-follower", "wallfollower", "wall_follower", "dfs", "backtrack":
		return WallFollower, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Status is the outcome of a search.
type Status string

const (
	StatusSolved    Status = "solved"
	StatusNoPath    Status = "no_path"
	StatusCancelled Status = "cancelled"
)

// Action describes what happened during a step.
type Action string

const (
	ActionExpand    Action = "expand"
	ActionGoal      Action = "goal"
	ActionAdvance   Action = "advance"
	ActionBacktrack Action = "backtrack"
)

// Step is passed to the step callback after every loop iteration.
type Step struct {
	Index     int             `json:"index"`
	Algorithm Algorithm       `json:"algorithm"`
	Action    Action          `json:"action"`
	Current   grid.Coordinate `json:"current"`
	Frontier  int             `json:"frontier"`
	Depth     int             `json:"depth"`
	Explored  int             `json:"explored"`
}

// StepFunc observes a search. It runs synchronously on the searching
// goroutine; returning a non-nil error cancels the search.
type StepFunc func(step Step) error

// Result is returned by every completed, exhausted or cancelled search.
type Result struct {
	Solved    bool              `json:"solved"`
	Status    Status            `json:"status"`
	Algorithm Algorithm         `json:"algorithm"`
	Path      []grid.Coordinate `json:"path"`
	Depth     int               `json:"depth"`
	Steps     int               `json:"steps"`
	Explored  int               `json:"explored"`
	Elapsed   time.Duration     `json:"elapsed"`
	Cause     error             `json:"-"`
}

// Option configures a search.
type Option func(*Options)

// Options holds search settings. Use the With* helpers to build it.
type Options struct {
	Delay    time.Duration
	MaxSteps int
	err      error
}

// DefaultOptions returns no delay and no step limit.
func DefaultOptions() Options {
	return Options{}
}

// WithDelay pauses for d after every step callback.
func WithDelay(d time.Duration) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: delay cannot be negative (%v)", ErrOptionViolation, d)
			return
		}
		o.Delay = d
	}
}

// WithMaxSteps cancels the search once n steps ran without reaching the end.
// Zero disables the limit.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: max steps cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxSteps = n
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o, o.err
}
