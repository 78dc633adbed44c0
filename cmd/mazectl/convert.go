package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/source"
)

// Output formats for convert.
const (
	formatJSON   = "json"
	formatLayout = "layout"
	formatText   = "text"
)

func convertCommand() *cli.Command {
	flags := append(inputFlags(),
		&cli.IntFlag{Name: "threshold", Usage: "binarization threshold 1-255 for --image (default: Otsu)"},
		&cli.BoolFlag{Name: "keep-polarity", Usage: "never invert an --image result"},
		&cli.BoolFlag{Name: "invert", Usage: "swap walls and open cells"},
		&cli.StringFlag{Name: "start", Usage: "start cell as row,col"},
		&cli.StringFlag{Name: "end", Usage: "end cell as row,col"},
		&cli.StringFlag{Name: "name", Usage: "configuration name", Value: "Converted"},
		&cli.StringFlag{Name: "description", Usage: "configuration description", Value: "Converted maze"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, layout or text", Value: formatJSON},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write here instead of stdout"},
	)
	return &cli.Command{
		Name:   "convert",
		Usage:  "convert a maze between image, 0/1 text, layout and JSON configuration",
		Flags:  flags,
		Action: runConvert,
	}
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	switch format {
	case formatJSON, formatLayout, formatText:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	m, err := loadConvertInput(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("invert") {
		source.Invert(m.cells)
	}
	for flag, target := range map[string]**grid.Coordinate{"start": &m.markers.Start, "end": &m.markers.End} {
		if raw := cmd.String(flag); raw != "" {
			c, err := parseCoordinate(raw)
			if err != nil {
				return err
			}
			*target = &c
		}
	}

	out := cmd.Root().Writer
	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case formatText:
		return source.WriteText(out, m.cells)
	case formatLayout:
		for _, row := range source.FormatLayout(m.cells, m.markers) {
			if _, err := fmt.Fprintln(out, row); err != nil {
				return err
			}
		}
		return nil
	}
	return writeConfig(out, cmd, m)
}

// loadConvertInput is loadMaze with the image tuning flags applied.
func loadConvertInput(cmd *cli.Command) (*maze, error) {
	if cmd.String("image") == "" {
		return loadMaze(cmd)
	}
	threshold := cmd.Int("threshold")
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be between 0 and 255, got %d", threshold)
	}
	cells, err := source.LoadImage(cmd.String("image"), source.ImageOptions{
		Rows:         int(cmd.Int("rows")),
		Cols:         int(cmd.Int("cols")),
		Threshold:    uint8(threshold),
		KeepPolarity: cmd.Bool("keep-polarity"),
	})
	if err != nil {
		return nil, err
	}
	return &maze{cells: cells}, nil
}

// writeConfig emits a configuration that passes the server's validation.
func writeConfig(out io.Writer, cmd *cli.Command, m *maze) error {
	config := &engine.MazeConfig{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Layout:      source.FormatLayout(m.cells, m.markers),
		Algorithm:   m.algorithm,
	}
	// Markers FormatLayout could not draw are kept explicitly so the
	// validator reports them.
	if s := m.markers.Start; s != nil && !markerDrawn(config.Layout, *s, source.StartChar) {
		config.Start = s
	}
	if e := m.markers.End; e != nil && !markerDrawn(config.Layout, *e, source.EndChar) {
		config.End = e
	}
	if err := engine.ValidateMazeConfig(config); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(config)
}

func markerDrawn(layout []string, c grid.Coordinate, ch rune) bool {
	if c.Row < 0 || c.Row >= len(layout) {
		return false
	}
	row := []rune(layout[c.Row])
	return c.Col >= 0 && c.Col < len(row) && row[c.Col] == ch
}
