package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/maze-solver/maze/grid"
)

// search carries the state shared by both strategies: the board, the
// endpoints, the step counter and the pacing settings.
type search struct {
	ctx      context.Context
	board    Board
	start    grid.Coordinate
	end      grid.Coordinate
	onStep   StepFunc
	opts     Options
	algo     Algorithm
	began    time.Time
	steps    int
	explored int
}

func newSearch(ctx context.Context, algo Algorithm, b Board, start, end grid.Coordinate, onStep StepFunc, opts []Option) (*search, error) {
	if b == nil {
		return nil, ErrNilBoard
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateEndpoints(b, start, end); err != nil {
		return nil, err
	}
	return &search{
		ctx:    ctx,
		board:  b,
		start:  start,
		end:    end,
		onStep: onStep,
		opts:   o,
		algo:   algo,
		began:  time.Now(),
	}, nil
}

// validateEndpoints runs before any cell is written.
func validateEndpoints(b Board, start, end grid.Coordinate) error {
	for _, c := range []grid.Coordinate{start, end} {
		if !inBounds(b, c) {
			h, w := b.Dimensions()
			return fmt.Errorf("%w: %v in %dx%d", grid.ErrOutOfBounds, c, h, w)
		}
		code, err := b.Get(c)
		if err != nil {
			return err
		}
		if code == grid.Wall {
			return fmt.Errorf("%w: %v", ErrInvalidEndpoint, c)
		}
	}
	return nil
}

func inBounds(b Board, c grid.Coordinate) bool {
	h, w := b.Dimensions()
	return c.Row >= 0 && c.Row < h && c.Col >= 0 && c.Col < w
}

// openNeighbor reports whether the cell one step from c in direction d is
// inside the board and unmarked. Off-board cells are treated as walls and
// never passed to the board.
func (s *search) openNeighbor(c grid.Coordinate, d grid.Direction) (grid.Coordinate, bool, error) {
	n := grid.Neighbor(c, d)
	if !inBounds(s.board, n) {
		return n, false, nil
	}
	code, err := s.board.Get(n)
	if err != nil {
		return n, false, err
	}
	return n, code == grid.Open, nil
}

func (s *search) mark(c grid.Coordinate, code grid.Code) error {
	if err := s.board.Set(c, code); err != nil {
		return fmt.Errorf("mark %v as %v: %w", c, code, err)
	}
	return nil
}

// step invokes the callback and applies the pacing delay. A non-nil return
// means the caller asked to stop.
func (s *search) step(st Step) error {
	s.steps++
	st.Index = s.steps
	st.Algorithm = s.algo
	st.Explored = s.explored
	if s.onStep != nil {
		if err := s.onStep(st); err != nil {
			return err
		}
	}
	if s.opts.Delay > 0 {
		timer := time.NewTimer(s.opts.Delay)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-timer.C:
		}
	}
	if s.opts.MaxSteps > 0 && s.steps >= s.opts.MaxSteps {
		return ErrStepLimit
	}
	return nil
}

func (s *search) result(status Status, path []grid.Coordinate, cause error) *Result {
	r := &Result{
		Solved:    status == StatusSolved,
		Status:    status,
		Algorithm: s.algo,
		Path:      path,
		Steps:     s.steps,
		Explored:  s.explored,
		Elapsed:   time.Since(s.began),
		Cause:     cause,
	}
	if r.Path == nil {
		r.Path = []grid.Coordinate{}
	}
	if r.Solved {
		r.Depth = len(path) - 1
	}
	return r
}

func (s *search) solved(path []grid.Coordinate) (*Result, error) {
	for _, c := range path {
		if err := s.mark(c, grid.OnPath); err != nil {
			return nil, err
		}
	}
	return s.result(StatusSolved, path, nil), nil
}

func (s *search) cancelled(cause error) *Result {
	return s.result(StatusCancelled, nil, cause)
}
