package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/maze-solver/maze/grid"
)

var (
	ErrEmptyInput    = errors.New("source: no cells found")
	ErrInvalidToken  = errors.New("source: invalid cell token")
	ErrBadDimensions = errors.New("source: invalid dimensions")
	ErrDuplicateMark = errors.New("source: marker appears more than once")
)

// Layout characters.
const (
	WallChar  = '#'
	OpenChar  = '.'
	StartChar = 'S'
	EndChar   = 'E'
)

// Markers holds the optional start and end cells found in a layout.
type Markers struct {
	Start *grid.Coordinate
	End   *grid.Coordinate
}

// ParseText reads whitespace separated 0/1 rows. Blank lines are skipped.
func ParseText(r io.Reader) ([][]int, error) {
	var cells [][]int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil || (v != 0 && v != 1) {
				return nil, fmt.Errorf("%w: %q at line %d", ErrInvalidToken, f, line)
			}
			row[i] = v
		}
		if len(cells) > 0 && len(row) != len(cells[0]) {
			return nil, fmt.Errorf("%w: line %d has %d cells, expected %d", ErrBadDimensions, line, len(row), len(cells[0]))
		}
		cells = append(cells, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if len(cells) == 0 {
		return nil, ErrEmptyInput
	}
	return cells, nil
}

// WriteText writes cells in the format ParseText reads.
func WriteText(w io.Writer, cells [][]int) error {
	bw := bufio.NewWriter(w)
	for _, row := range cells {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ParseLayout converts character rows into a 0/1 matrix.
// '#' and '1' are walls; '.', '0' and ' ' are open; 'S' and 'E' mark the
// start and end cells, which are open.
func ParseLayout(rows []string) ([][]int, Markers, error) {
	var markers Markers
	if len(rows) == 0 {
		return nil, markers, ErrEmptyInput
	}
	width := len([]rune(rows[0]))
	if width == 0 {
		return nil, markers, ErrEmptyInput
	}
	cells := make([][]int, len(rows))
	for r, line := range rows {
		chars := []rune(line)
		if len(chars) != width {
			return nil, markers, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrBadDimensions, r, len(chars), width)
		}
		row := make([]int, width)
		for c, ch := range chars {
			switch ch {
			case WallChar, '1':
				row[c] = 1
			case OpenChar, '0', ' ':
			case StartChar, EndChar:
				pos := grid.Coordinate{Row: r, Col: c}
				target := &markers.Start
				if ch == EndChar {
					target = &markers.End
				}
				if *target != nil {
					return nil, markers, fmt.Errorf("%w: %q at %v", ErrDuplicateMark, ch, pos)
				}
				*target = &pos
			default:
				return nil, markers, fmt.Errorf("%w: %q at (%d,%d)", ErrInvalidToken, ch, r, c)
			}
		}
		cells[r] = row
	}
	return cells, markers, nil
}

// FormatLayout is the inverse of ParseLayout. Markers outside the matrix or
// on walls are ignored.
func FormatLayout(cells [][]int, markers Markers) []string {
	rows := make([]string, len(cells))
	for r, row := range cells {
		var b strings.Builder
		for c, v := range row {
			pos := grid.Coordinate{Row: r, Col: c}
			switch {
			case v == 1:
				b.WriteRune(WallChar)
			case markers.Start != nil && *markers.Start == pos:
				b.WriteRune(StartChar)
			case markers.End != nil && *markers.End == pos:
				b.WriteRune(EndChar)
			default:
				b.WriteRune(OpenChar)
			}
		}
		rows[r] = b.String()
	}
	return rows
}
