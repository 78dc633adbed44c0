package source

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Image conversion defaults: a 33x33 maze.
const (
	DefaultRows = 33
	DefaultCols = 33
)

// ImageOptions controls FromImage.
type ImageOptions struct {
	Rows int
	Cols int
	// Threshold binarizes pixels. Zero selects Otsu's method.
	Threshold uint8
	// KeepPolarity disables the border heuristic that flips the result when
	// walls came out as the dark color.
	KeepPolarity bool
}

func (o ImageOptions) withDefaults() ImageOptions {
	if o.Rows == 0 {
		o.Rows = DefaultRows
	}
	if o.Cols == 0 {
		o.Cols = DefaultCols
	}
	return o
}

// LoadImage reads an image file and converts it with FromImage.
func LoadImage(path string, opts ImageOptions) ([][]int, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return FromImage(img, opts)
}

// FromImage converts a picture of a maze into a 0/1 matrix.
//
// The image is converted to grayscale and binarized, split into Rows x Cols
// blocks, and each block whose mean is bright becomes a wall. If fewer than
// half of the border cells end up as walls the matrix is inverted, since a
// maze is expected to be enclosed by walls.
func FromImage(img image.Image, opts ImageOptions) ([][]int, error) {
	opts = opts.withDefaults()
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if opts.Rows < 1 || opts.Cols < 1 || opts.Rows > h || opts.Cols > w {
		return nil, fmt.Errorf("%w: %dx%d cells from %dx%d pixels", ErrBadDimensions, opts.Rows, opts.Cols, w, h)
	}

	gray := make([]uint8, w*h)
	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			gray[y*w+x] = v
			hist[v]++
		}
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = otsu(hist, w*h)
	}

	cells := make([][]int, opts.Rows)
	for r := 0; r < opts.Rows; r++ {
		y0, y1 := r*h/opts.Rows, (r+1)*h/opts.Rows
		cells[r] = make([]int, opts.Cols)
		for c := 0; c < opts.Cols; c++ {
			x0, x1 := c*w/opts.Cols, (c+1)*w/opts.Cols
			bright, total := 0, 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if gray[y*w+x] > threshold {
						bright++
					}
					total++
				}
			}
			if bright*2 > total {
				cells[r][c] = 1
			}
		}
	}

	if !opts.KeepPolarity && borderWallRatio(cells) < 0.5 {
		Invert(cells)
	}
	return cells, nil
}

// otsu returns the threshold that maximizes between-class variance.
func otsu(hist [256]int, total int) uint8 {
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}
	var sumB, best float64
	var wB int
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

func borderWallRatio(cells [][]int) float64 {
	h, w := len(cells), len(cells[0])
	walls, total := 0, 0
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if r != 0 && c != 0 && r != h-1 && c != w-1 {
				continue
			}
			total++
			walls += cells[r][c]
		}
	}
	return float64(walls) / float64(total)
}

// Invert swaps walls and open cells in place.
func Invert(cells [][]int) {
	for _, row := range cells {
		for i := range row {
			row[i] = 1 - row[i]
		}
	}
}
