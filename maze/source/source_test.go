package source

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/grid"
)

var sample = [][]int{
	{1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1},
	{1, 1, 0, 1, 1},
	{1, 0, 0, 0, 1},
	{1, 1, 1, 1, 1},
}

// paint draws cells at scale px per cell; walls get wallShade.
func paint(cells [][]int, scale int, wallShade, openShade uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(cells[0])*scale, len(cells)*scale))
	for r, row := range cells {
		for c, v := range row {
			shade := openShade
			if v == 1 {
				shade = wallShade
			}
			for y := r * scale; y < (r+1)*scale; y++ {
				for x := c * scale; x < (c+1)*scale; x++ {
					img.SetGray(x, y, color.Gray{Y: shade})
				}
			}
		}
	}
	return img
}

func TestParseText(t *testing.T) {
	input := "1 1 1\n\n1 0 1\n  1 1 1  \n"
	cells, err := ParseText(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}}, cells)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, cells))
	assert.Equal(t, "1 1 1\n1 0 1\n1 1 1\n", buf.String())

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "\n\n", ErrEmptyInput},
		{"bad token", "0 2 0", ErrInvalidToken},
		{"letters", "0 x", ErrInvalidToken},
		{"ragged", "0 0\n0", ErrBadDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseLayout(t *testing.T) {
	rows := []string{
		"#####",
		"#S..#",
		"##.##",
		"#..E#",
		"#####",
	}
	cells, markers, err := ParseLayout(rows)
	require.NoError(t, err)
	assert.Equal(t, sample, cells)
	require.NotNil(t, markers.Start)
	require.NotNil(t, markers.End)
	assert.Equal(t, grid.Coordinate{Row: 1, Col: 1}, *markers.Start)
	assert.Equal(t, grid.Coordinate{Row: 3, Col: 3}, *markers.End)

	assert.Equal(t, rows, FormatLayout(cells, markers))

	numeric, _, err := ParseLayout([]string{"101", "1 1"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 0, 1}, {1, 0, 1}}, numeric)

	_, _, err = ParseLayout(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, _, err = ParseLayout([]string{"##", "#"})
	assert.ErrorIs(t, err, ErrBadDimensions)
	_, _, err = ParseLayout([]string{"#?"})
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, _, err = ParseLayout([]string{"SS"})
	assert.ErrorIs(t, err, ErrDuplicateMark)
}

func TestFromImage(t *testing.T) {
	opts := ImageOptions{Rows: 5, Cols: 5}

	t.Run("bright walls", func(t *testing.T) {
		cells, err := FromImage(paint(sample, 10, 240, 20), opts)
		require.NoError(t, err)
		assert.Equal(t, sample, cells)
	})

	t.Run("dark walls are flipped", func(t *testing.T) {
		cells, err := FromImage(paint(sample, 10, 15, 230), opts)
		require.NoError(t, err)
		assert.Equal(t, sample, cells)
	})

	t.Run("keep polarity", func(t *testing.T) {
		o := opts
		o.KeepPolarity = true
		cells, err := FromImage(paint(sample, 10, 15, 230), o)
		require.NoError(t, err)
		assert.Equal(t, 0, cells[0][0])
		assert.Equal(t, 1, cells[1][1])
	})

	t.Run("fixed threshold", func(t *testing.T) {
		o := opts
		o.Threshold = 90
		cells, err := FromImage(paint(sample, 10, 200, 60), o)
		require.NoError(t, err)
		assert.Equal(t, sample, cells)
	})

	t.Run("too many cells", func(t *testing.T) {
		_, err := FromImage(paint(sample, 1, 255, 0), ImageOptions{Rows: 10, Cols: 10})
		assert.ErrorIs(t, err, ErrBadDimensions)
	})
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.png")
	require.NoError(t, gg.SavePNG(path, paint(sample, 8, 255, 0)))

	cells, err := LoadImage(path, ImageOptions{Rows: 5, Cols: 5})
	require.NoError(t, err)
	assert.Equal(t, sample, cells)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"), ImageOptions{})
	assert.Error(t, err)
}

func TestOtsu(t *testing.T) {
	var hist [256]int
	hist[30] = 100
	hist[200] = 100
	th := otsu(hist, 200)
	assert.GreaterOrEqual(t, th, uint8(30))
	assert.Less(t, th, uint8(200))
}
