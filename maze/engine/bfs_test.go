package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/grid"
)

func at(r, c int) grid.Coordinate { return grid.Coordinate{Row: r, Col: c} }

// gapGrid is a 5x5 closed maze whose middle row is a wall with one gap at (2,2).
func gapGrid() [][]int {
	return [][]int{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 0, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	}
}

// referenceDistance is an independent BFS over the raw matrix.
func referenceDistance(cells [][]int, start, end grid.Coordinate) int {
	h, w := len(cells), len(cells[0])
	dist := make([][]int, h)
	for i := range dist {
		dist[i] = make([]int, w)
		for j := range dist[i] {
			dist[i][j] = -1
		}
	}
	dist[start.Row][start.Col] = 0
	queue := []grid.Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			r, c := cur.Row+off[0], cur.Col+off[1]
			if r < 0 || r >= h || c < 0 || c >= w || cells[r][c] == 1 || dist[r][c] >= 0 {
				continue
			}
			dist[r][c] = dist[cur.Row][cur.Col] + 1
			queue = append(queue, at(r, c))
		}
	}
	return dist[end.Row][end.Col]
}

// randomMaze returns a closed-boundary grid with roughly density interior walls.
func randomMaze(rng *rand.Rand, h, w int, density float64) [][]int {
	cells := make([][]int, h)
	for r := range cells {
		cells[r] = make([]int, w)
		for c := range cells[r] {
			if r == 0 || c == 0 || r == h-1 || c == w-1 || rng.Float64() < density {
				cells[r][c] = 1
			}
		}
	}
	return cells
}

func openCells(cells [][]int) []grid.Coordinate {
	var out []grid.Coordinate
	for r, row := range cells {
		for c, v := range row {
			if v == 0 {
				out = append(out, at(r, c))
			}
		}
	}
	return out
}

func assertValidPath(t *testing.T, cells [][]int, path []grid.Coordinate, start, end grid.Coordinate) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, end, path[len(path)-1])
	for i, p := range path {
		assert.Equal(t, 0, cells[p.Row][p.Col], "path cell %v is a wall", p)
		if i == 0 {
			continue
		}
		prev := path[i-1]
		dr, dc := p.Row-prev.Row, p.Col-prev.Col
		assert.Equal(t, 1, dr*dr+dc*dc, "non-adjacent step %v -> %v", prev, p)
	}
}

// recordingBoard fails the test on any access outside the board.
type recordingBoard struct {
	*grid.Grid
	t        *testing.T
	accessed int
}

func (b *recordingBoard) check(c grid.Coordinate) {
	b.accessed++
	if !b.InBounds(c) {
		b.t.Errorf("out of bounds access at %v", c)
	}
}

func (b *recordingBoard) Get(c grid.Coordinate) (grid.Code, error) {
	b.check(c)
	return b.Grid.Get(c)
}

func (b *recordingBoard) Set(c grid.Coordinate, code grid.Code) error {
	b.check(c)
	return b.Grid.Set(c, code)
}

func TestSolve_GapScenario(t *testing.T) {
	g := grid.MustNew(gapGrid())
	res, err := Solve(context.Background(), g, at(1, 1), at(3, 3), nil)
	require.NoError(t, err)

	assert.True(t, res.Solved)
	assert.Equal(t, StatusSolved, res.Status)
	assert.Equal(t, 4, res.Depth)
	assert.Equal(t, []grid.Coordinate{at(1, 1), at(1, 2), at(2, 2), at(3, 2), at(3, 3)}, res.Path)
	assert.Contains(t, res.Path, at(2, 2))

	for _, p := range res.Path {
		code, _ := g.Get(p)
		assert.Equal(t, grid.OnPath, code, "path cell %v", p)
	}
	assert.Equal(t, len(res.Path), g.Count(grid.OnPath))
}

func TestSolve_StartEqualsEnd(t *testing.T) {
	g := grid.MustNew([][]int{
		{1, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	})
	calls := 0
	res, err := Solve(context.Background(), g, at(1, 1), at(1, 1), func(s Step) error {
		calls++
		assert.Equal(t, ActionGoal, s.Action)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.Equal(t, []grid.Coordinate{at(1, 1)}, res.Path)
	assert.Equal(t, 0, res.Depth)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Steps)
}

func TestSolve_WalledOff(t *testing.T) {
	cells := [][]int{
		{1, 1, 1, 1, 1, 1, 1},
		{1, 0, 0, 1, 0, 0, 1},
		{1, 0, 0, 1, 0, 0, 1},
		{1, 0, 0, 1, 0, 0, 1},
		{1, 1, 1, 1, 1, 1, 1},
	}
	g := grid.MustNew(cells)
	res, err := Solve(context.Background(), g, at(1, 1), at(3, 5), nil)
	require.NoError(t, err)

	assert.False(t, res.Solved)
	assert.Equal(t, StatusNoPath, res.Status)
	assert.Empty(t, res.Path)
	assert.Equal(t, 6, res.Explored)
	assert.Equal(t, 6, res.Steps)

	for r := 1; r <= 3; r++ {
		for c := 1; c <= 2; c++ {
			code, _ := g.Get(at(r, c))
			assert.Equal(t, grid.Explored, code, "reachable cell (%d,%d)", r, c)
		}
		for c := 4; c <= 5; c++ {
			code, _ := g.Get(at(r, c))
			assert.Equal(t, grid.Open, code, "unreachable cell (%d,%d)", r, c)
		}
	}
}

func TestSolve_IsolatedStart(t *testing.T) {
	g := grid.MustNew([][]int{
		{1, 1, 1, 1},
		{1, 0, 1, 1},
		{1, 1, 0, 1},
		{1, 1, 1, 1},
	})
	res, err := Solve(context.Background(), g, at(1, 1), at(2, 2), nil)
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 1, res.Explored)
}

func TestSolve_InvalidEndpoints(t *testing.T) {
	walls := [][]int{
		{1, 1, 1, 1},
		{1, 0, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}

	t.Run("end is a wall", func(t *testing.T) {
		g := grid.MustNew(walls)
		calls := 0
		res, err := Solve(context.Background(), g, at(1, 1), at(2, 2), func(Step) error {
			calls++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidEndpoint)
		assert.Nil(t, res)
		assert.Equal(t, 0, calls)
		code, _ := g.Get(at(1, 1))
		assert.Equal(t, grid.Open, code, "no mutation before validation")
	})

	t.Run("start is a wall", func(t *testing.T) {
		g := grid.MustNew(walls)
		_, err := Solve(context.Background(), g, at(0, 0), at(1, 1), nil)
		assert.ErrorIs(t, err, ErrInvalidEndpoint)
	})

	t.Run("out of bounds", func(t *testing.T) {
		g := grid.MustNew(walls)
		_, err := Solve(context.Background(), g, at(1, 1), at(4, 1), nil)
		assert.ErrorIs(t, err, grid.ErrOutOfBounds)
		_, err = Solve(context.Background(), g, at(-1, 1), at(1, 1), nil)
		assert.ErrorIs(t, err, grid.ErrOutOfBounds)
		assert.Equal(t, 0, g.Count(grid.Explored))
	})

	t.Run("nil board", func(t *testing.T) {
		_, err := Solve(context.Background(), nil, at(0, 0), at(0, 0), nil)
		assert.ErrorIs(t, err, ErrNilBoard)
	})
}

func TestSolve_ShortestMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	solvedCount := 0
	for i := 0; i < 40; i++ {
		cells := randomMaze(rng, 11, 13, 0.3)
		open := openCells(cells)
		if len(open) < 2 {
			continue
		}
		start := open[rng.Intn(len(open))]
		end := open[rng.Intn(len(open))]

		res, err := Solve(context.Background(), grid.MustNew(cells), start, end, nil)
		require.NoError(t, err)

		want := referenceDistance(cells, start, end)
		if want < 0 {
			assert.False(t, res.Solved, "maze %d", i)
			continue
		}
		solvedCount++
		require.True(t, res.Solved, "maze %d", i)
		assert.Equal(t, want, len(res.Path)-1, "maze %d", i)
		assertValidPath(t, cells, res.Path, start, end)

		d, ok := Distance(grid.MustNew(cells), start, end)
		assert.True(t, ok)
		assert.Equal(t, want, d)
	}
	assert.Greater(t, solvedCount, 0)
}

func TestSolve_Deterministic(t *testing.T) {
	cells := [][]int{
		{1, 1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0, 1},
		{1, 0, 0, 0, 0, 1},
		{1, 0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1, 1},
	}
	run := func() ([]grid.Coordinate, []grid.Coordinate) {
		var visits []grid.Coordinate
		res, err := Solve(context.Background(), grid.MustNew(cells), at(1, 1), at(3, 4), func(s Step) error {
			visits = append(visits, s.Current)
			return nil
		})
		require.NoError(t, err)
		return res.Path, visits
	}
	p1, v1 := run()
	p2, v2 := run()
	assert.Equal(t, p1, p2)
	assert.Equal(t, v1, v2)
	// Right is tried before Down, so the path hugs the top row first.
	assert.Equal(t, []grid.Coordinate{at(1, 1), at(1, 2), at(1, 3), at(1, 4), at(2, 4), at(3, 4)}, p1)
}

func TestSolve_BoundsSafety(t *testing.T) {
	t.Run("closed boundary", func(t *testing.T) {
		b := &recordingBoard{Grid: grid.MustNew(gapGrid()), t: t}
		res, err := Solve(context.Background(), b, at(1, 1), at(3, 3), nil)
		require.NoError(t, err)
		assert.True(t, res.Solved)
		assert.Greater(t, b.accessed, 0)
	})

	t.Run("open boundary", func(t *testing.T) {
		b := &recordingBoard{Grid: grid.MustNew([][]int{
			{0, 0, 0},
			{0, 1, 0},
			{0, 0, 0},
		}), t: t}
		res, err := Solve(context.Background(), b, at(0, 0), at(2, 2), nil)
		require.NoError(t, err)
		assert.True(t, res.Solved)
		assert.Equal(t, 4, res.Depth)
	})
}

func TestSolve_Cancellation(t *testing.T) {
	stop := errors.New("stop requested")

	t.Run("callback error", func(t *testing.T) {
		g := grid.MustNew(gapGrid())
		res, err := Solve(context.Background(), g, at(1, 1), at(3, 3), func(s Step) error {
			if s.Index == 2 {
				return stop
			}
			return nil
		})
		require.NoError(t, err)
		assert.False(t, res.Solved)
		assert.Equal(t, StatusCancelled, res.Status)
		assert.ErrorIs(t, res.Cause, stop)
		assert.Equal(t, 2, res.Steps)
		assert.Empty(t, res.Path)
		assert.Equal(t, 0, g.Count(grid.OnPath))
	})

	t.Run("cancel on final step still solves", func(t *testing.T) {
		g := grid.MustNew(gapGrid())
		res, err := Solve(context.Background(), g, at(1, 1), at(3, 3), func(s Step) error {
			if s.Action == ActionGoal {
				return stop
			}
			return nil
		})
		require.NoError(t, err)
		assert.True(t, res.Solved)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := Solve(ctx, grid.MustNew(gapGrid()), at(1, 1), at(3, 3), nil)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, res.Status)
		assert.ErrorIs(t, res.Cause, context.Canceled)
		assert.Equal(t, 0, res.Steps)
	})

	t.Run("deadline during delay", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		res, err := Solve(ctx, grid.MustNew(gapGrid()), at(1, 1), at(3, 3), nil, WithDelay(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, res.Status)
		assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
		assert.Equal(t, 1, res.Steps)
	})

	t.Run("step limit", func(t *testing.T) {
		res, err := Solve(context.Background(), grid.MustNew(gapGrid()), at(1, 1), at(3, 3), nil, WithMaxSteps(3))
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, res.Status)
		assert.ErrorIs(t, res.Cause, ErrStepLimit)
		assert.Equal(t, 3, res.Steps)
	})
}

func TestOptions(t *testing.T) {
	g := grid.MustNew(gapGrid())
	_, err := Solve(context.Background(), g, at(1, 1), at(3, 3), nil, WithDelay(-time.Second))
	assert.ErrorIs(t, err, ErrOptionViolation)
	_, err = Solve(context.Background(), g, at(1, 1), at(3, 3), nil, WithMaxSteps(-1))
	assert.ErrorIs(t, err, ErrOptionViolation)
}

func TestStepReporting(t *testing.T) {
	var steps []Step
	_, err := Solve(context.Background(), grid.MustNew(gapGrid()), at(1, 1), at(3, 3), func(s Step) error {
		steps = append(steps, s)
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	for i, s := range steps {
		assert.Equal(t, i+1, s.Index)
		assert.Equal(t, BFS, s.Algorithm)
		assert.Equal(t, i+1, s.Explored)
	}
	assert.Equal(t, ActionGoal, steps[len(steps)-1].Action)
	assert.Equal(t, 4, steps[len(steps)-1].Depth)
}

func TestParseAlgorithm(t *testing.T) {
	tests := map[string]Algorithm{
		"":              BFS,
		"bfs":           BFS,
		"BFS":           BFS,
		"wall-follower": WallFollower,
		"dfs":           WallFollower,
	}
	for in, want := range tests {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlgorithm("a-star")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestReachable(t *testing.T) {
	g := grid.MustNew(gapGrid())
	assert.Equal(t, 7, Reachable(g, at(1, 1)))
	assert.Equal(t, 0, Reachable(g, at(0, 0)))
	assert.Equal(t, 0, Reachable(g, at(9, 9)))
}
