// Package engine implements the maze solvers.
//
// Two strategies share one contract:
//   - Solve: breadth-first search, returns a shortest path by edge count
//   - Follow: wall-follower backtracking with an explicit frame stack,
//     returns a path whenever one exists
//
// Both validate the endpoints before writing anything, mark cells on the
// Board as they go (Explored, DeadEnd, then OnPath on success) and call the
// optional StepFunc once per loop iteration on the calling goroutine. The
// callback is the only suspension point: it may render a frame or sleep, and
// it cancels the search by returning an error.
//
// Usage:
//
//	g := grid.MustNew(cells)
//	res, err := engine.Solve(ctx, g, start, end, func(s engine.Step) error {
//		fmt.Println(s.Index, s.Current)
//		return nil
//	}, engine.WithDelay(10*time.Millisecond))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if res.Solved {
//		fmt.Println(res.Path)
//	}
//
// A Board belongs to one search at a time. Reset the grid overlay between
// runs; stale markers are treated as already visited.
package engine
