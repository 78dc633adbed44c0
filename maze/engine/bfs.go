package engine

import (
	"context"

	"github.com/wricardo/maze-solver/maze/grid"
)

// Solve runs a breadth-first search from start to end over b.
//
// Each dequeued cell is marked Explored and onStep is called exactly once for
// it, including the dequeue that reaches end. Neighbors are tried in the
// order Right, Down, Left, Up and enqueued only when they are Open and not yet
// seen. On success every cell of the shortest path, endpoints included, is
// marked OnPath.
//
// Invalid endpoints return an error before the board is touched. An exhausted
// queue is reported as StatusNoPath; a callback error, a cancelled ctx or the
// step limit is reported as StatusCancelled with the cause in Result.Cause.
func Solve(ctx context.Context, b Board, start, end grid.Coordinate, onStep StepFunc, opts ...Option) (*Result, error) {
	s, err := newSearch(ctx, BFS, b, start, end, onStep, opts)
	if err != nil {
		return nil, err
	}

	queue := []grid.Coordinate{start}
	visited := map[grid.Coordinate]bool{start: true}
	predecessor := make(map[grid.Coordinate]grid.Coordinate)
	depth := map[grid.Coordinate]int{start: 0}

	for head := 0; head < len(queue); {
		if err := s.ctx.Err(); err != nil {
			return s.cancelled(err), nil
		}

		current := queue[head]
		head++
		if err := s.mark(current, grid.Explored); err != nil {
			return nil, err
		}
		s.explored++

		found := current == end
		if !found {
			for _, d := range grid.AllDirections() {
				n, open, err := s.openNeighbor(current, d)
				if err != nil {
					return nil, err
				}
				if !open || visited[n] {
					continue
				}
				visited[n] = true
				predecessor[n] = current
				depth[n] = depth[current] + 1
				queue = append(queue, n)
			}
		}

		action := ActionExpand
		if found {
			action = ActionGoal
		}
		stepErr := s.step(Step{
			Action:   action,
			Current:  current,
			Frontier: len(queue) - head,
			Depth:    depth[current],
		})
		// The goal was reached before the callback ran, so a stop request
		// on this step does not undo the result.
		if found {
			return s.solved(reconstructPath(predecessor, start, end))
		}
		if stepErr != nil {
			return s.cancelled(stepErr), nil
		}
	}

	return s.result(StatusNoPath, nil, nil), nil
}

// reconstructPath walks the predecessor chain back from end and reverses it.
func reconstructPath(predecessor map[grid.Coordinate]grid.Coordinate, start, end grid.Coordinate) []grid.Coordinate {
	path := []grid.Coordinate{end}
	for cur := end; cur != start; {
		prev, ok := predecessor[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Distance returns the shortest path length in edges between start and end
// using only the wall topology of b. It never writes to b.
func Distance(b Board, start, end grid.Coordinate) (int, bool) {
	if b == nil || validateEndpoints(b, start, end) != nil {
		return -1, false
	}
	dist := map[grid.Coordinate]int{start: 0}
	queue := []grid.Coordinate{start}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur == end {
			return dist[cur], true
		}
		for _, d := range grid.AllDirections() {
			n := grid.Neighbor(cur, d)
			if !inBounds(b, n) {
				continue
			}
			if _, seen := dist[n]; seen {
				continue
			}
			code, err := b.Get(n)
			if err != nil || code == grid.Wall {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return -1, false
}

// Reachable counts the non-wall cells connected to start, start included.
func Reachable(b Board, start grid.Coordinate) int {
	if b == nil || !inBounds(b, start) {
		return 0
	}
	if code, err := b.Get(start); err != nil || code == grid.Wall {
		return 0
	}
	seen := map[grid.Coordinate]bool{start: true}
	queue := []grid.Coordinate{start}
	for head := 0; head < len(queue); head++ {
		for _, d := range grid.AllDirections() {
			n := grid.Neighbor(queue[head], d)
			if !inBounds(b, n) || seen[n] {
				continue
			}
			if code, err := b.Get(n); err != nil || code == grid.Wall {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return len(queue)
}
