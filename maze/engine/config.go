package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/source"
)

// Validation limits for maze configurations.
const (
	MinGridSize = 3
	MaxGridSize = 200
	MaxDelayMs  = 1000
)

// MazeConfig is a maze layout stored as JSON.
//
// Start and End may be given explicitly or marked in the layout with 'S' and
// 'E'; explicit values win.
type MazeConfig struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Layout      []string         `json:"layout"`
	Start       *grid.Coordinate `json:"start,omitempty"`
	End         *grid.Coordinate `json:"end,omitempty"`
	Algorithm   Algorithm        `json:"algorithm,omitempty"`
	DelayMs     int              `json:"delay_ms,omitempty"`
}

// Cells parses the layout into a 0/1 matrix and resolves the endpoints.
func (c *MazeConfig) Cells() ([][]int, source.Markers, error) {
	cells, markers, err := source.ParseLayout(c.Layout)
	if err != nil {
		return nil, markers, err
	}
	if c.Start != nil {
		s := *c.Start
		markers.Start = &s
	}
	if c.End != nil {
		e := *c.End
		markers.End = &e
	}
	return cells, markers, nil
}

// Grid builds a fresh grid from the layout.
func (c *MazeConfig) Grid() (*grid.Grid, error) {
	cells, _, err := c.Cells()
	if err != nil {
		return nil, err
	}
	return grid.New(cells)
}

// Endpoints returns the configured start and end, either of which may be nil.
func (c *MazeConfig) Endpoints() (*grid.Coordinate, *grid.Coordinate) {
	_, markers, err := c.Cells()
	if err != nil {
		return nil, nil
	}
	return markers.Start, markers.End
}

// ValidateMazeConfig checks a configuration for structural correctness.
// Reachability between the endpoints is not required; an unsolvable maze is
// a legitimate input.
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	rows := len(config.Layout)
	if rows < MinGridSize || rows > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d rows, got %d", MinGridSize, MaxGridSize, rows)
	}
	cols := len([]rune(config.Layout[0]))
	if cols < MinGridSize || cols > MaxGridSize {
		return fmt.Errorf("config validation: layout rows must have between %d and %d cells, got %d", MinGridSize, MaxGridSize, cols)
	}

	cells, markers, err := config.Cells()
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	g, err := grid.New(cells)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	for name, c := range map[string]*grid.Coordinate{"start": markers.Start, "end": markers.End} {
		if c == nil {
			continue
		}
		if !g.InBounds(*c) {
			return fmt.Errorf("config validation: %s %v is outside the %dx%d layout", name, *c, rows, cols)
		}
		if g.IsWall(*c) {
			return fmt.Errorf("config validation: %s %v is a wall", name, *c)
		}
	}

	if config.DelayMs < 0 || config.DelayMs > MaxDelayMs {
		return fmt.Errorf("config validation: delay_ms must be between 0 and %d, got %d", MaxDelayMs, config.DelayMs)
	}
	if config.Algorithm != "" {
		if _, err := ParseAlgorithm(string(config.Algorithm)); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}
	return nil
}

// LoadMazeConfig reads and validates a configuration file.
func LoadMazeConfig(path string) (*MazeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := ValidateMazeConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
