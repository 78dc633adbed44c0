package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/render"
)

const gapLayout = "#####\n#S..#\n##.##\n#..E#\n#####\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"mazectl"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSolveLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gap.txt", gapLayout)

	out, err := run(t, "solve", "--layout", path)
	require.NoError(t, err)
	assert.Contains(t, out, "bfs (1,1)->(3,3) status=solved")
	assert.Contains(t, out, "path=5")
	assert.Contains(t, out, "#S*")
}

func TestSolveTraceWallFollower(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gap.txt", gapLayout)

	out, err := run(t, "solve", "--layout", path, "--algorithm", "wall-follower", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "step 1 ")
	assert.Contains(t, out, "wall-follower (1,1)->(3,3) status=solved")
}

func TestSolveTextWithEndpointFlags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gap.txt", "1 1 1 1\n1 0 0 1\n1 1 1 1\n")

	out, err := run(t, "solve", "--text", path, "--start", "1,1", "--end", "1, 2")
	require.NoError(t, err)
	assert.Contains(t, out, "status=solved")
	assert.Contains(t, out, "path=2")
}

func TestSolveMaxSteps(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gap.txt", gapLayout)

	out, err := run(t, "solve", "--layout", path, "--max-steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "status=cancelled")
	assert.Contains(t, out, "cause: "+engine.ErrStepLimit.Error())
}

func TestSolveConfigAndPNG(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"name":"Gap","description":"gap","layout":["#####","#S..#","##.##","#..E#","#####"],"algorithm":"wall-follower"}`
	path := writeFile(t, dir, "gap.json", cfg)
	png := filepath.Join(dir, "out.png")

	out, err := run(t, "solve", "--config", path, "--png", png)
	require.NoError(t, err)
	assert.Contains(t, out, "wall-follower")
	assert.Contains(t, out, "wrote "+png)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestSolveErrors(t *testing.T) {
	dir := t.TempDir()
	layout := writeFile(t, dir, "gap.txt", gapLayout)
	text := writeFile(t, dir, "open.txt", "0 0 0\n0 0 0\n0 0 0\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"no input", []string{"solve"}, errNoInput, ""},
		{"two inputs", []string{"solve", "--layout", layout, "--text", text}, nil, "only one input"},
		{"wall start", []string{"solve", "--layout", layout, "--start", "0,0"}, engine.ErrInvalidEndpoint, ""},
		{"off grid end", []string{"solve", "--layout", layout, "--end", "9,9"}, grid.ErrOutOfBounds, ""},
		{"bad coordinate", []string{"solve", "--layout", layout, "--start", "1"}, nil, "expected row,col"},
		{"unknown algorithm", []string{"solve", "--layout", layout, "--algorithm", "astar"}, engine.ErrUnknownAlgorithm, ""},
		{"missing markers", []string{"solve", "--text", text}, nil, "no start cell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gap.json", `{"name":"Gap","description":"gap","layout":["#####","#S..#","##.##","#..E#","#####"]}`)
	writeFile(t, dir, "blocked.json", `{"name":"Blocked","description":"b","layout":["#####","#S#E#","#####"]}`)

	out, err := run(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ gap.json")
	assert.Contains(t, out, "shortest path (1,1)->(3,3): 4 moves")
	assert.Contains(t, out, "end (1,3) is unreachable")
	assert.Contains(t, out, "2 of 2 configurations valid")

	writeFile(t, dir, "broken.json", `{"name":"Broken","description":"b","layout":["##","##"]}`)
	out, err = run(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.json")
	assert.Contains(t, out, "2 of 3 configurations valid")
}

func TestValidateBundledConfigs(t *testing.T) {
	dir := filepath.Join("..", "..", "configs")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("configs directory not found")
	}
	_, err := run(t, "validate", dir)
	assert.NoError(t, err)
}

func TestValidateEmptyDir(t *testing.T) {
	_, err := run(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration files")
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gap.json", `{"name":"Gap","description":"gap","layout":["#####","#S..#","##.##","#..E#","#####"]}`)
	writeFile(t, dir, "open.json", `{"name":"Open","description":"no endpoints","layout":["###","#.#","###"]}`)

	out, err := run(t, "analyze", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Analyzing gap.json ===")
	assert.Contains(t, out, "Reachable from start: 7 of 7 open cells")
	assert.Contains(t, out, "Shortest path: 4 moves")
	assert.Contains(t, out, "No endpoints configured")
	for _, algo := range engine.Algorithms() {
		assert.Contains(t, out, string(algo))
	}
}

func TestConvertImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cells := [][]int{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	}
	g := grid.MustNew(cells)
	png := filepath.Join(dir, "maze.png")
	require.NoError(t, render.SavePNG(png, g.Snapshot(), render.Endpoints{}, render.ImageOptions{CellSize: 6}))

	out, err := run(t, "convert", "--image", png, "--rows", "5", "--cols", "5", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "1 1 1 1 1\n1 0 0 0 1\n1 1 1 0 1\n1 0 0 0 1\n1 1 1 1 1\n", out)
}

func TestConvertToConfig(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "gap.txt", "1 1 1 1 1\n1 0 0 0 1\n1 1 1 0 1\n1 0 0 0 1\n1 1 1 1 1\n")
	output := filepath.Join(dir, "gap.json")

	_, err := run(t, "convert", "--text", text, "--start", "1,1", "--end", "3,1", "--name", "Gap", "-o", output)
	require.NoError(t, err)

	config, err := engine.LoadMazeConfig(output)
	require.NoError(t, err)
	assert.Equal(t, "Gap", config.Name)
	assert.Equal(t, []string{"#####", "#S..#", "###.#", "#E..#", "#####"}, config.Layout)
	assert.Nil(t, config.Start, "drawn markers are not repeated")

	var raw map[string]interface{}
	data, _ := os.ReadFile(output)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "start")
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "gap.txt", "1 1 1\n1 0 1\n1 1 1\n")

	_, err := run(t, "convert", "--text", text, "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, err = run(t, "convert", "--text", text, "--start", "0,0")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "is a wall"), "got %v", err)
}

func TestParseCoordinate(t *testing.T) {
	c, err := parseCoordinate(" 2 , 7 ")
	require.NoError(t, err)
	assert.Equal(t, grid.Coordinate{Row: 2, Col: 7}, c)

	for _, bad := range []string{"", "1", "a,b", "1,2,3"} {
		_, err := parseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}
