package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/render"
	"github.com/wricardo/maze-solver/maze/source"
)

var errNoInput = errors.New("one of --config, --layout, --text or --image is required")

// maze is a loaded board plus whatever defaults its source carried.
type maze struct {
	cells     [][]int
	markers   source.Markers
	algorithm engine.Algorithm
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "JSON maze configuration file"},
		&cli.StringFlag{Name: "layout", Usage: "text file of '#', '.', 'S' and 'E' rows"},
		&cli.StringFlag{Name: "text", Usage: "text file of whitespace separated 0/1 rows"},
		&cli.StringFlag{Name: "image", Usage: "picture of a maze"},
		&cli.IntFlag{Name: "rows", Usage: "cell rows when reading --image", Value: source.DefaultRows},
		&cli.IntFlag{Name: "cols", Usage: "cell columns when reading --image", Value: source.DefaultCols},
	}
}

func solveCommand() *cli.Command {
	flags := append(inputFlags(),
		&cli.StringFlag{Name: "algorithm", Aliases: []string{"a"}, Usage: "bfs or wall-follower (default: the config's, else bfs)"},
		&cli.StringFlag{Name: "start", Usage: "start cell as row,col"},
		&cli.StringFlag{Name: "end", Usage: "end cell as row,col"},
		&cli.DurationFlag{Name: "delay", Usage: "pause between steps"},
		&cli.IntFlag{Name: "max-steps", Usage: "abort after this many steps"},
		&cli.BoolFlag{Name: "trace", Usage: "print one line per step"},
		&cli.BoolFlag{Name: "animate", Usage: "redraw the grid after every step"},
		&cli.StringFlag{Name: "png", Usage: "write the final grid to this PNG file"},
	)
	return &cli.Command{
		Name:   "solve",
		Usage:  "solve a maze and print the marked grid",
		Flags:  flags,
		Action: runSolve,
	}
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	m, err := loadMaze(cmd)
	if err != nil {
		return err
	}
	g, err := grid.New(m.cells)
	if err != nil {
		return err
	}

	algo := m.algorithm
	if name := cmd.String("algorithm"); name != "" {
		if algo, err = engine.ParseAlgorithm(name); err != nil {
			return err
		}
	}
	if algo == "" {
		algo = engine.BFS
	}

	start, end, err := endpoints(cmd, m.markers)
	if err != nil {
		return err
	}
	ep := render.Endpoints{Start: &start, End: &end}

	var onStep engine.StepFunc
	trace, animate := cmd.Bool("trace"), cmd.Bool("animate")
	if trace || animate {
		onStep = func(step engine.Step) error {
			if animate {
				fmt.Fprint(out, "\033[H\033[2J")
				fmt.Fprint(out, render.ASCII(g.Snapshot(), ep))
			}
			fmt.Fprintf(out, "step %d %s %v frontier=%d depth=%d explored=%d\n",
				step.Index, step.Action, step.Current, step.Frontier, step.Depth, step.Explored)
			return nil
		}
	}

	res, err := engine.Run(ctx, algo, g, start, end, onStep,
		engine.WithDelay(cmd.Duration("delay")),
		engine.WithMaxSteps(int(cmd.Int("max-steps"))),
	)
	if err != nil {
		return err
	}

	fmt.Fprint(out, render.ASCII(g.Snapshot(), ep))
	fmt.Fprintf(out, "%s %v->%v status=%s steps=%d explored=%d path=%d elapsed=%s\n",
		res.Algorithm, start, end, res.Status, res.Steps, res.Explored, len(res.Path), res.Elapsed)
	if res.Cause != nil {
		fmt.Fprintf(out, "cause: %v\n", res.Cause)
	}

	if path := cmd.String("png"); path != "" {
		if err := render.SavePNG(path, g.Snapshot(), ep, render.ImageOptions{}); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// loadMaze reads the single input named by the source flags.
func loadMaze(cmd *cli.Command) (*maze, error) {
	var set []string
	for _, name := range []string{"config", "layout", "text", "image"} {
		if cmd.String(name) != "" {
			set = append(set, "--"+name)
		}
	}
	switch len(set) {
	case 0:
		return nil, errNoInput
	case 1:
	default:
		return nil, fmt.Errorf("only one input allowed, got %s", strings.Join(set, " and "))
	}

	switch {
	case cmd.String("config") != "":
		cfg, err := engine.LoadMazeConfig(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		cells, markers, err := cfg.Cells()
		if err != nil {
			return nil, err
		}
		return &maze{cells: cells, markers: markers, algorithm: cfg.Algorithm}, nil

	case cmd.String("layout") != "":
		rows, err := readLines(cmd.String("layout"))
		if err != nil {
			return nil, err
		}
		cells, markers, err := source.ParseLayout(rows)
		if err != nil {
			return nil, err
		}
		return &maze{cells: cells, markers: markers}, nil

	case cmd.String("text") != "":
		f, err := os.Open(cmd.String("text"))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cells, err := source.ParseText(f)
		if err != nil {
			return nil, err
		}
		return &maze{cells: cells}, nil
	}

	cells, err := source.LoadImage(cmd.String("image"), source.ImageOptions{
		Rows: int(cmd.Int("rows")),
		Cols: int(cmd.Int("cols")),
	})
	if err != nil {
		return nil, err
	}
	return &maze{cells: cells}, nil
}

// readLines returns the non-empty lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows, scanner.Err()
}

// endpoints resolves start and end: flags first, then markers.
func endpoints(cmd *cli.Command, markers source.Markers) (grid.Coordinate, grid.Coordinate, error) {
	resolve := func(flag string, marker *grid.Coordinate) (grid.Coordinate, error) {
		if raw := cmd.String(flag); raw != "" {
			return parseCoordinate(raw)
		}
		if marker != nil {
			return *marker, nil
		}
		return grid.Coordinate{}, fmt.Errorf("no %s cell: pass --%s row,col or mark it in the layout", flag, flag)
	}
	start, err := resolve("start", markers.Start)
	if err != nil {
		return start, start, err
	}
	end, err := resolve("end", markers.End)
	return start, end, err
}

// parseCoordinate reads "row,col".
func parseCoordinate(s string) (grid.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Coordinate{}, fmt.Errorf("invalid cell %q, expected row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Coordinate{}, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Coordinate{}, fmt.Errorf("invalid col in %q: %w", s, err)
	}
	return grid.Coordinate{Row: row, Col: col}, nil
}
