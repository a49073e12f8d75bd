// Package export writes a figure and its reflection to files: SVG, HTML,
// PNG/JPEG (through headless Chrome or gonum/plot) and PDF.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/sirupsen/logrus"
)

// Figure is the on-disk form of a session: the vertices and the selected
// reflection.
type Figure struct {
	Points     []geometry.Point    `json:"points" toml:"points"`
	Reflection geometry.Reflection `json:"reflection" toml:"reflection"`
}

// FromSnapshot converts a session snapshot to a Figure.
func FromSnapshot(s session.Snapshot) Figure {
	return Figure{Points: s.Points, Reflection: s.Reflection}
}

// Snapshot converts the figure back into render input.
func (f Figure) Snapshot() session.Snapshot {
	return session.Snapshot{Points: f.Points, Reflection: f.Reflection}
}

// LoadFigure reads a figure file. Files ending in .toml are decoded as TOML;
// anything else as JSON, either {"points": [...], "reflection": {...}} or a
// bare array of points (reflected across the x-axis).
func LoadFigure(path string, log logrus.FieldLogger) (Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Figure{}, fmt.Errorf("export: reading figure file '%s': %w", path, err)
	}
	return DecodeFigure(data, path, log)
}

// DecodeFigure parses figure data. The format follows the extension of
// name, as in LoadFigure. Coordinates and the parameter must be finite.
func DecodeFigure(data []byte, name string, log logrus.FieldLogger) (Figure, error) {
	var (
		fig Figure
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		fig, err = decodeTOML(data)
	} else {
		fig, err = decodeJSON(data, log)
	}
	if err != nil {
		return Figure{}, err
	}
	if err := geometry.CheckFigure(fig.Points, fig.Reflection); err != nil {
		return Figure{}, fmt.Errorf("export: figure '%s': %w", name, err)
	}
	return fig, nil
}

func decodeTOML(data []byte) (Figure, error) {
	var fig Figure
	if _, err := toml.Decode(string(data), &fig); err != nil {
		return Figure{}, fmt.Errorf("export: parsing TOML figure: %w", err)
	}
	return fig, nil
}

func decodeJSON(data []byte, log logrus.FieldLogger) (Figure, error) {
	var fig Figure
	err := json.Unmarshal(data, &fig)
	if err == nil {
		return fig, nil
	}
	log.WithError(err).Warn("figure is not a JSON object, trying a bare array of points")
	var points []geometry.Point
	if errDirect := json.Unmarshal(data, &points); errDirect != nil {
		return Figure{}, fmt.Errorf("export: parsing JSON figure: %w (also failed direct array parse: %v)", err, errDirect)
	}
	return Figure{Points: points, Reflection: geometry.Reflection{Kind: geometry.XAxis}}, nil
}

// WriteJSON writes the figure as indented JSON.
func WriteJSON(fig Figure, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fig); err != nil {
		return fmt.Errorf("export: writing JSON figure: %w", err)
	}
	return nil
}

// WriteTOML writes the figure as TOML.
func WriteTOML(fig Figure, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(fig); err != nil {
		return fmt.Errorf("export: writing TOML figure: %w", err)
	}
	return nil
}
