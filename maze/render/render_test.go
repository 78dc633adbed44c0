package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/grid"
)

func snapshot() [][]grid.Code {
	return [][]grid.Code{
		{grid.Wall, grid.Wall, grid.Wall, grid.Wall},
		{grid.Wall, grid.OnPath, grid.Explored, grid.Wall},
		{grid.Wall, grid.OnPath, grid.DeadEnd, grid.Wall},
		{grid.Wall, grid.Wall, grid.Open, grid.Wall},
	}
}

func TestASCII(t *testing.T) {
	start := grid.Coordinate{Row: 1, Col: 1}
	out := ASCII(snapshot(), Endpoints{Start: &start})
	assert.Equal(t, "####\n#S.#\n#*x#\n## #\n", out)

	assert.Equal(t, "", ASCII(nil, Endpoints{}))
}

func TestImage(t *testing.T) {
	start := grid.Coordinate{Row: 1, Col: 1}
	end := grid.Coordinate{Row: 2, Col: 1}
	img, err := Image(snapshot(), Endpoints{Start: &start, End: &end}, ImageOptions{CellSize: 10})
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 40, b.Dx())
	assert.Equal(t, 40, b.Dy())

	rgba := func(x, y int) color.RGBA {
		r, g, bl, a := img.At(x, y).RGBA()
		return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
	}
	p := DefaultPalette()
	assert.Equal(t, p.Cells[grid.Wall], rgba(1, 1))
	assert.Equal(t, p.Cells[grid.Explored], rgba(25, 15))
	assert.Equal(t, p.Cells[grid.Open], rgba(25, 35))
	assert.Equal(t, p.Start, rgba(15, 15))
	assert.Equal(t, p.End, rgba(15, 25))

	_, err = Image(nil, Endpoints{}, ImageOptions{})
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, snapshot(), Endpoints{}, ImageOptions{
		PathLine: []grid.Coordinate{{Row: 1, Col: 1}, {Row: 2, Col: 1}},
	}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4*DefaultCellSize, img.Bounds().Dx())

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, SavePNG(path, snapshot(), Endpoints{}, ImageOptions{CellSize: 4}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
