package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyGrid        = errors.New("grid: grid is empty")
	ErrNonRectangular   = errors.New("grid: rows have different widths")
	ErrInvalidCell      = errors.New("grid: cell value must be 0 or 1")
	ErrOutOfBounds      = errors.New("grid: coordinate out of bounds")
	ErrWallMutation     = errors.New("grid: wall cells cannot be changed")
	ErrInvalidCode      = errors.New("grid: unknown cell code")
	ErrInvalidDirection = errors.New("grid: unknown direction")
	ErrInvalidCoord     = errors.New("grid: malformed coordinate")
)

// Code is the combined value of a cell: its topology plus the search overlay.
type Code int

const (
	Open     Code = 0
	Wall     Code = 1
	Explored Code = 2
	OnPath   Code = 3
	DeadEnd  Code = 4
)

func (c Code) String() string {
	switch c {
	case Open:
		return "open"
	case Wall:
		return "wall"
	case Explored:
		return "explored"
	case OnPath:
		return "path"
	case DeadEnd:
		return "dead_end"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Valid reports whether c is one of the known codes.
func (c Code) Valid() bool {
	return c >= Open && c <= DeadEnd
}

// Coordinate addresses a cell by 0-indexed row and column.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// ParseCoordinate accepts "row,col" with optional surrounding parentheses.
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: row %q", ErrInvalidCoord, parts[0])
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: col %q", ErrInvalidCoord, parts[1])
	}
	return Coordinate{Row: row, Col: col}, nil
}

// Direction is one of the four orthogonal moves.
type Direction int

const (
	Right Direction = iota
	Down
	Left
	Up
)

var directionOffsets = [4][2]int{
	Right: {0, 1},
	Down:  {1, 0},
	Left:  {0, -1},
	Up:    {-1, 0},
}

// Offset returns the row and column delta of d.
func (d Direction) Offset() (int, int) {
	o := directionOffsets[d&3]
	return o[0], o[1]
}

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps "right", "down", "left" or "up" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "up", "u":
		return Up, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// AllDirections returns the fixed iteration order used by every search.
func AllDirections() [4]Direction {
	return [4]Direction{Right, Down, Left, Up}
}

// Opposite returns the direction pointing back the way d came.
func Opposite(d Direction) Direction {
	return (d + 2) & 3
}

// Neighbor returns the coordinate one step from c in direction d.
// The result may lie outside any grid.
func Neighbor(c Coordinate, d Direction) Coordinate {
	dr, dc := d.Offset()
	return Coordinate{Row: c.Row + dr, Col: c.Col + dc}
}

// DirectionSet is a small set of directions still to be tried from a cell.
type DirectionSet uint8

// FullDirectionSet contains all four directions.
const FullDirectionSet DirectionSet = 1<<Right | 1<<Down | 1<<Left | 1<<Up

func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

func (s DirectionSet) Without(d Direction) DirectionSet {
	return s &^ (1 << d)
}

func (s DirectionSet) Empty() bool {
	return s&FullDirectionSet == 0
}

func (s DirectionSet) Len() int {
	n := 0
	for _, d := range AllDirections() {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Next removes and returns the first remaining direction in fixed order.
func (s DirectionSet) Next() (Direction, DirectionSet, bool) {
	for _, d := range AllDirections() {
		if s.Has(d) {
			return d, s.Without(d), true
		}
	}
	return 0, s, false
}
