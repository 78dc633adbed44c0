package grid

import (
	"fmt"
	"strings"
	"sync"
)

// Grid is a rectangular maze. Wall topology is fixed at construction;
// the overlay holds the markers written by a search.
type Grid struct {
	height  int
	width   int
	walls   []bool
	overlay []Code
	mu      sync.RWMutex
}

// New builds a grid from a 0/1 matrix (0 open, 1 wall). The input is copied.
func New(cells [][]int) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	h, w := len(cells), len(cells[0])
	g := &Grid{
		height:  h,
		width:   w,
		walls:   make([]bool, h*w),
		overlay: make([]Code, h*w),
	}
	for r, row := range cells {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrNonRectangular, r, len(row), w)
		}
		for c, v := range row {
			switch v {
			case 0:
			case 1:
				g.walls[r*w+c] = true
			default:
				return nil, fmt.Errorf("%w: got %d at (%d,%d)", ErrInvalidCell, v, r, c)
			}
		}
	}
	return g, nil
}

// MustNew is New that panics on error. Intended for fixtures.
func MustNew(cells [][]int) *Grid {
	g, err := New(cells)
	if err != nil {
		panic(err)
	}
	return g
}

// Dimensions returns height and width.
func (g *Grid) Dimensions() (int, int) {
	return g.height, g.width
}

// InBounds reports whether c addresses a cell of g.
func (g *Grid) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < g.height && c.Col >= 0 && c.Col < g.width
}

func (g *Grid) index(c Coordinate) int {
	return c.Row*g.width + c.Col
}

// Get returns the combined code at c.
func (g *Grid) Get(c Coordinate) (Code, error) {
	if !g.InBounds(c) {
		return 0, fmt.Errorf("%w: %v in %dx%d", ErrOutOfBounds, c, g.height, g.width)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.index(c)
	if g.walls[i] {
		return Wall, nil
	}
	return g.overlay[i], nil
}

// Set writes a search marker at c. Walls are never written and never produced.
func (g *Grid) Set(c Coordinate, code Code) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %v in %dx%d", ErrOutOfBounds, c, g.height, g.width)
	}
	if code == Wall {
		return fmt.Errorf("%w: cannot set %v to wall", ErrWallMutation, c)
	}
	if !code.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCode, int(code))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.index(c)
	if g.walls[i] {
		return fmt.Errorf("%w: %v is a wall", ErrWallMutation, c)
	}
	g.overlay[i] = code
	return nil
}

// IsWall reports whether c is a wall. Coordinates outside the grid count as walls.
func (g *Grid) IsWall(c Coordinate) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.walls[g.index(c)]
}

// Reset clears every search marker.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.overlay {
		g.overlay[i] = Open
	}
}

// Clone returns an independent copy including the current overlay.
func (g *Grid) Clone() *Grid {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := &Grid{
		height:  g.height,
		width:   g.width,
		walls:   make([]bool, len(g.walls)),
		overlay: make([]Code, len(g.overlay)),
	}
	copy(out.walls, g.walls)
	copy(out.overlay, g.overlay)
	return out
}

// Snapshot returns the combined codes row by row.
func (g *Grid) Snapshot() [][]Code {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([][]Code, g.height)
	for r := 0; r < g.height; r++ {
		row := make([]Code, g.width)
		for c := 0; c < g.width; c++ {
			i := r*g.width + c
			if g.walls[i] {
				row[c] = Wall
			} else {
				row[c] = g.overlay[i]
			}
		}
		out[r] = row
	}
	return out
}

// Topology returns the 0/1 matrix the grid was built from.
func (g *Grid) Topology() [][]int {
	out := make([][]int, g.height)
	for r := 0; r < g.height; r++ {
		row := make([]int, g.width)
		for c := 0; c < g.width; c++ {
			if g.walls[r*g.width+c] {
				row[c] = 1
			}
		}
		out[r] = row
	}
	return out
}

// HasClosedBoundary reports whether every border cell is a wall.
func (g *Grid) HasClosedBoundary() bool {
	for c := 0; c < g.width; c++ {
		if !g.walls[c] || !g.walls[(g.height-1)*g.width+c] {
			return false
		}
	}
	for r := 0; r < g.height; r++ {
		if !g.walls[r*g.width] || !g.walls[r*g.width+g.width-1] {
			return false
		}
	}
	return true
}

// OpenCells counts the traversable cells.
func (g *Grid) OpenCells() int {
	n := 0
	for _, w := range g.walls {
		if !w {
			n++
		}
	}
	return n
}

// Count returns how many cells currently hold code.
func (g *Grid) Count(code Code) int {
	n := 0
	for _, row := range g.Snapshot() {
		for _, v := range row {
			if v == code {
				n++
			}
		}
	}
	return n
}

// String renders the topology as space separated 0/1 rows.
func (g *Grid) String() string {
	var b strings.Builder
	for r, row := range g.Topology() {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c, v := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(byte('0' + v))
		}
	}
	return b.String()
}
