package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
)

const defaultConfigDir = "configs"

// ValidationResult captures the outcome of validating a single file.
// Notes are informational and never make a file invalid.
type ValidationResult struct {
	File  string
	Valid bool
	Err   error
	Notes []string
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check every maze configuration in a directory",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := configFiles(cmd)
			if err != nil {
				return err
			}
			return printValidation(cmd.Root().Writer, files)
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "compare both solvers on every maze configuration in a directory",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := configFiles(cmd)
			if err != nil {
				return err
			}
			out := cmd.Root().Writer
			for _, file := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
				if err := analyzeConfig(ctx, out, file); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
			}
			return nil
		},
	}
}

// configFiles lists the JSON files of the directory argument.
func configFiles(cmd *cli.Command) ([]string, error) {
	dir := defaultConfigDir
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().First()
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func printValidation(out io.Writer, files []string) error {
	invalid := 0
	for _, file := range files {
		result := validateConfig(file)
		if result.Valid {
			fmt.Fprintf(out, "✓ %s\n", result.File)
		} else {
			invalid++
			fmt.Fprintf(out, "✗ %s: %v\n", result.File, result.Err)
		}
		for _, note := range result.Notes {
			fmt.Fprintf(out, "    %s\n", note)
		}
	}
	fmt.Fprintf(out, "\n%d of %d configurations valid\n", len(files)-invalid, len(files))
	if invalid > 0 {
		return fmt.Errorf("%d invalid configuration(s)", invalid)
	}
	return nil
}

// validateConfig loads a file through the same checks the server applies
// and notes whether its endpoints are connected.
func validateConfig(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path)}

	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.Valid = true

	g, err := config.Grid()
	if err != nil {
		result.Valid = false
		result.Err = err
		return result
	}
	rows, cols := g.Dimensions()
	result.Notes = append(result.Notes, fmt.Sprintf("%s: %dx%d, %d open cells", config.Name, rows, cols, g.OpenCells()))

	if !g.HasClosedBoundary() {
		result.Notes = append(result.Notes, "border is not fully walled; solvers treat the edge as a wall")
	}

	start, end := config.Endpoints()
	if start == nil || end == nil {
		result.Notes = append(result.Notes, "no start/end; solve requests must supply them")
		return result
	}
	if d, ok := engine.Distance(g, *start, *end); ok {
		result.Notes = append(result.Notes, fmt.Sprintf("shortest path %v->%v: %d moves", *start, *end, d))
	} else {
		result.Notes = append(result.Notes, fmt.Sprintf("end %v is unreachable from start %v", *end, *start))
	}
	return result
}

// analyzeConfig runs both solvers on a private copy of the maze and prints
// how they compare.
func analyzeConfig(ctx context.Context, out io.Writer, path string) error {
	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		return err
	}
	g, err := config.Grid()
	if err != nil {
		return err
	}
	rows, cols := g.Dimensions()

	fmt.Fprintf(out, "Name: %s\n", config.Name)
	fmt.Fprintf(out, "Grid: %d x %d\n", rows, cols)
	fmt.Fprintf(out, "Open cells: %d, Walls: %d\n", g.OpenCells(), g.Count(grid.Wall))

	start, end := config.Endpoints()
	if start == nil || end == nil {
		fmt.Fprintf(out, "No endpoints configured, skipping solvers\n")
		return nil
	}
	fmt.Fprintf(out, "Start: %v, End: %v\n", *start, *end)
	reachable := engine.Reachable(g, *start)
	fmt.Fprintf(out, "Reachable from start: %d of %d open cells\n", reachable, g.OpenCells())
	if reachable < g.OpenCells() {
		fmt.Fprintf(out, "⚠️  %d open cells are cut off from the start\n", g.OpenCells()-reachable)
	}

	for _, algo := range engine.Algorithms() {
		board := g.Clone()
		res, err := engine.Run(ctx, algo, board, *start, *end, nil)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-14s %-9s steps=%-5d explored=%-5d", algo, res.Status, res.Steps, res.Explored)
		if res.Solved {
			line += fmt.Sprintf(" path=%d", len(res.Path))
		}
		if n := board.Count(grid.DeadEnd); n > 0 {
			line += fmt.Sprintf(" dead_ends=%d", n)
		}
		fmt.Fprintln(out, line)
	}

	if d, ok := engine.Distance(g, *start, *end); ok {
		fmt.Fprintf(out, "✅ Shortest path: %d moves\n", d)
	} else {
		fmt.Fprintf(out, "❌ No path between start and end\n")
	}
	return nil
}
