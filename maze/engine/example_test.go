package engine_test

import (
	"context"
	"fmt"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
)

func ExampleSolve() {
	g := grid.MustNew([][]int{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 0, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	})
	start := grid.Coordinate{Row: 1, Col: 1}
	end := grid.Coordinate{Row: 3, Col: 3}

	res, err := engine.Solve(context.Background(), g, start, end, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Status, res.Depth)
	fmt.Println(res.Path)
	// Output:
	// solved 4
	// [(1,1) (1,2) (2,2) (3,2) (3,3)]
}

func ExampleFollow() {
	g := grid.MustNew([][]int{
		{1, 1, 1, 1},
		{1, 0, 0, 1},
		{1, 1, 0, 1},
		{1, 1, 1, 1},
	})
	steps := 0
	res, _ := engine.Follow(context.Background(), g, grid.Coordinate{Row: 1, Col: 1}, grid.Coordinate{Row: 2, Col: 2}, func(engine.Step) error {
		steps++
		return nil
	})
	fmt.Println(res.Solved, res.Path, steps)
	// Output:
	// true [(1,1) (1,2) (2,2)] 3
}
