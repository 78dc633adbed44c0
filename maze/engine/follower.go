package engine

import (
	"context"

	"github.com/wricardo/maze-solver/maze/grid"
)

// frame is one open point on the wall-follower stack.
type frame struct {
	at        grid.Coordinate
	remaining grid.DirectionSet
}

// Follow runs the wall-follower backtracking search from start to end.
//
// It keeps an explicit stack of frames. Each iteration either finds end on
// top of the stack, advances into the next untried Open neighbor (marking it
// Explored) or pops an exhausted frame (marking it DeadEnd). A frame entered
// by direction d never tries Opposite(d). onStep is called once per
// iteration.
//
// The path returned is the stack from bottom to top. It exists whenever any
// path exists but is not necessarily the shortest.
func Follow(ctx context.Context, b Board, start, end grid.Coordinate, onStep StepFunc, opts ...Option) (*Result, error) {
	s, err := newSearch(ctx, WallFollower, b, start, end, onStep, opts)
	if err != nil {
		return nil, err
	}

	if err := s.mark(start, grid.Explored); err != nil {
		return nil, err
	}
	s.explored++
	stack := []frame{{at: start, remaining: grid.FullDirectionSet}}

	for len(stack) > 0 {
		if err := s.ctx.Err(); err != nil {
			return s.cancelled(err), nil
		}

		top := len(stack) - 1
		if stack[top].at == end {
			// The goal was reached before the callback ran, so a stop
			// request on this step does not undo the result.
			_ = s.step(Step{
				Action:   ActionGoal,
				Current:  end,
				Frontier: len(stack),
				Depth:    top,
			})
			path := make([]grid.Coordinate, len(stack))
			for i, f := range stack {
				path[i] = f.at
			}
			return s.solved(path)
		}

		var next *frame
		for next == nil {
			d, rest, ok := stack[top].remaining.Next()
			if !ok {
				break
			}
			stack[top].remaining = rest
			n, open, err := s.openNeighbor(stack[top].at, d)
			if err != nil {
				return nil, err
			}
			if open {
				next = &frame{at: n, remaining: grid.FullDirectionSet.Without(grid.Opposite(d))}
			}
		}

		st := Step{}
		if next != nil {
			if err := s.mark(next.at, grid.Explored); err != nil {
				return nil, err
			}
			s.explored++
			stack = append(stack, *next)
			st.Action = ActionAdvance
			st.Current = next.at
		} else {
			dead := stack[top].at
			stack = stack[:top]
			if err := s.mark(dead, grid.DeadEnd); err != nil {
				return nil, err
			}
			st.Action = ActionBacktrack
			st.Current = dead
		}
		st.Frontier = len(stack)
		st.Depth = len(stack) - 1
		if st.Depth < 0 {
			st.Depth = 0
		}

		if err := s.step(st); err != nil {
			return s.cancelled(err), nil
		}
	}

	return s.result(StatusNoPath, nil, nil), nil
}

// Run dispatches to Solve or Follow.
func Run(ctx context.Context, algo Algorithm, b Board, start, end grid.Coordinate, onStep StepFunc, opts ...Option) (*Result, error) {
	switch algo {
	case BFS, "":
		return Solve(ctx, b, start, end, onStep, opts...)
	case WallFollower:
		return Follow(ctx, b, start, end, onStep, opts...)
	}
	return nil, ErrUnknownAlgorithm
}
