// Package grid provides the maze model shared by the solvers and renderers.
//
// A Grid separates topology from search state:
//   - Topology is the wall/open layout, fixed when the grid is built
//   - The overlay holds the markers a search writes (explored, path, dead end)
//
// Get returns the combined value of a cell as a Code. Set only writes overlay
// markers; it refuses to create or modify walls so that a search can never
// alter the maze it is exploring.
//
// Coordinates are 0-indexed (row, col) pairs. Directions are iterated in the
// fixed order Right, Down, Left, Up, which makes every search in this module
// deterministic.
//
// Usage:
//
//	g, err := grid.New([][]int{
//		{1, 1, 1},
//		{1, 0, 1},
//		{1, 1, 1},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	code, _ := g.Get(grid.Coordinate{Row: 1, Col: 1}) // grid.Open
//	g.Set(grid.Coordinate{Row: 1, Col: 1}, grid.Explored)
//	g.Reset()
package grid
