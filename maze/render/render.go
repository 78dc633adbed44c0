package render

import (
	"errors"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"

	"github.com/wricardo/maze-solver/maze/grid"
)

var ErrEmptySnapshot = errors.New("render: snapshot is empty")

// Endpoints are drawn on top of the cell codes when set.
type Endpoints struct {
	Start *grid.Coordinate
	End   *grid.Coordinate
}

func (e Endpoints) marker(c grid.Coordinate) rune {
	switch {
	case e.Start != nil && *e.Start == c:
		return 'S'
	case e.End != nil && *e.End == c:
		return 'E'
	}
	return 0
}

// Glyphs used by ASCII.
var glyphs = map[grid.Code]rune{
	grid.Open:     ' ',
	grid.Wall:     '#',
	grid.Explored: '.',
	grid.OnPath:   '*',
	grid.DeadEnd:  'x',
}

// ASCII draws one character per cell, one line per row.
func ASCII(snapshot [][]grid.Code, ep Endpoints) string {
	var b strings.Builder
	for r, row := range snapshot {
		for c, code := range row {
			if m := ep.marker(grid.Coordinate{Row: r, Col: c}); m != 0 {
				b.WriteRune(m)
				continue
			}
			g, ok := glyphs[code]
			if !ok {
				g = '?'
			}
			b.WriteRune(g)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Palette maps codes and endpoints to colors.
type Palette struct {
	Cells map[grid.Code]color.Color
	Start color.Color
	End   color.Color
}

// DefaultPalette follows the desktop solver: white corridors, black walls,
// red explored cells and a dark grey path.
func DefaultPalette() Palette {
	return Palette{
		Cells: map[grid.Code]color.Color{
			grid.Open:     color.RGBA{255, 255, 255, 255},
			grid.Wall:     color.RGBA{0, 0, 0, 255},
			grid.Explored: color.RGBA{255, 0, 0, 255},
			grid.OnPath:   color.RGBA{90, 90, 90, 255},
			grid.DeadEnd:  color.RGBA{255, 170, 170, 255},
		},
		Start: color.RGBA{0, 255, 0, 255},
		End:   color.RGBA{0, 0, 255, 255},
	}
}

// ImageOptions controls Image and PNG.
type ImageOptions struct {
	CellSize int
	Palette  *Palette
	// PathLine draws a line through the centers of these cells.
	PathLine []grid.Coordinate
}

const DefaultCellSize = 20

// Image rasterizes a snapshot.
func Image(snapshot [][]grid.Code, ep Endpoints, opts ImageOptions) (image.Image, error) {
	if len(snapshot) == 0 || len(snapshot[0]) == 0 {
		return nil, ErrEmptySnapshot
	}
	scale := opts.CellSize
	if scale <= 0 {
		scale = DefaultCellSize
	}
	palette := DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}

	h, w := len(snapshot), len(snapshot[0])
	dc := gg.NewContext(w*scale, h*scale)
	dc.SetColor(palette.Cells[grid.Open])
	dc.Clear()

	s := float64(scale)
	for r, row := range snapshot {
		for c, code := range row {
			col, ok := palette.Cells[code]
			if !ok || code == grid.Open {
				continue
			}
			dc.SetColor(col)
			dc.DrawRectangle(float64(c)*s, float64(r)*s, s, s)
			dc.Fill()
		}
	}

	if len(opts.PathLine) > 1 {
		dc.SetColor(palette.Cells[grid.OnPath])
		dc.SetLineWidth(s / 3)
		first := opts.PathLine[0]
		dc.MoveTo(float64(first.Col)*s+s/2, float64(first.Row)*s+s/2)
		for _, p := range opts.PathLine[1:] {
			dc.LineTo(float64(p.Col)*s+s/2, float64(p.Row)*s+s/2)
		}
		dc.Stroke()
	}

	if ep.Start != nil {
		dc.SetColor(palette.Start)
		dc.DrawCircle(float64(ep.Start.Col)*s+s/2, float64(ep.Start.Row)*s+s/2, s/2)
		dc.Fill()
	}
	if ep.End != nil {
		dc.SetColor(palette.End)
		dc.DrawCircle(float64(ep.End.Col)*s+s/2, float64(ep.End.Row)*s+s/2, s/2)
		dc.Fill()
	}
	return dc.Image(), nil
}

// PNG writes the rasterized snapshot to w.
func PNG(w io.Writer, snapshot [][]grid.Code, ep Endpoints, opts ImageOptions) error {
	img, err := Image(snapshot, ep, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

// SavePNG writes the rasterized snapshot to a file.
func SavePNG(path string, snapshot [][]grid.Code, ep Endpoints, opts ImageOptions) error {
	img, err := Image(snapshot, ep, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
