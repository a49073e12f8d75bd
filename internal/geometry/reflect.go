// Package geometry holds the point type and the seven plane reflections.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownKind is returned when a reflection name is not one of the
// supported kinds.
var ErrUnknownKind = errors.New("geometry: unknown reflection kind")

// ErrNotFinite is returned for NaN or infinite coordinates and parameters.
var ErrNotFinite = errors.New("geometry: not a finite number")

// Point is a vertex in the Cartesian plane.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Equal reports whether both coordinates match exactly.
func (p Point) Equal(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// IsFinite is false for NaN and ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFigure returns ErrNotFinite if any vertex or the reflection parameter
// is NaN or infinite.
func CheckFigure(points []Point, r Reflection) error {
	for i, p := range points {
		if !p.Finite() {
			return fmt.Errorf("%w: vertex %d is (%v, %v)", ErrNotFinite, i, p.X, p.Y)
		}
	}
	if !IsFinite(r.Param) {
		return fmt.Errorf("%w: parameter is %v", ErrNotFinite, r.Param)
	}
	return nil
}

// String formats the point as "(x, y)" using the shortest exact decimal form.
func (p Point) String() string {
	return "(" + FormatNumber(p.X) + ", " + FormatNumber(p.Y) + ")"
}

// FormatNumber prints v without trailing zeros.
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Kind selects the mirror line of a reflection.
type Kind int

const (
	XAxis Kind = iota
	YAxis
	Origin
	LineYEqualsX
	LineYEqualsNegX
	Horizontal // y = k
	Vertical   // x = h
)

type kindInfo struct {
	name    string
	label   string
	formula string
}

var kinds = [...]kindInfo{
	XAxis:           {"x-axis", "Reflection across the x-axis", "(x, y) → (x, -y)"},
	YAxis:           {"y-axis", "Reflection across the y-axis", "(x, y) → (-x, y)"},
	Origin:          {"origin", "Reflection through the origin", "(x, y) → (-x, -y)"},
	LineYEqualsX:    {"y=x", "Reflection across the line y = x", "(x, y) → (y, x)"},
	LineYEqualsNegX: {"y=-x", "Reflection across the line y = -x", "(x, y) → (-y, -x)"},
	Horizontal:      {"horizontal", "Reflection across a horizontal line (y = k)", "(x, y) → (x, 2k - y)"},
	Vertical:        {"vertical", "Reflection across a vertical line (x = h)", "(x, y) → (2h - x, y)"},
}

// AllKinds returns every kind in menu order.
func AllKinds() []Kind {
	return []Kind{XAxis, YAxis, Origin, LineYEqualsX, LineYEqualsNegX, Horizontal, Vertical}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= XAxis && k <= Vertical
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kinds[k].name
}

// Label is the menu text for the kind.
func (k Kind) Label() string {
	if !k.Valid() {
		return k.String()
	}
	return kinds[k].label
}

// Formula is the coordinate rule in arrow notation.
func (k Kind) Formula() string {
	if !k.Valid() {
		return "(x, y) → (x, y)"
	}
	return kinds[k].formula
}

// NeedsParam is true for the two kinds that mirror across a user-chosen line.
func (k Kind) NeedsParam() bool {
	return k == Horizontal || k == Vertical
}

// ParamName is "k" for horizontal lines, "h" for vertical lines and empty
// otherwise.
func (k Kind) ParamName() string {
	switch k {
	case Horizontal:
		return "k"
	case Vertical:
		return "h"
	}
	return ""
}

// ParseKind maps a wire name to its Kind. Matching ignores case and spaces.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for _, k := range AllKinds() {
		if kinds[k].name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Reflection is a kind plus its line parameter (k or h). Param is ignored
// by kinds that do not need it.
type Reflection struct {
	Kind  Kind    `json:"kind" toml:"kind"`
	Param float64 `json:"param,omitempty" toml:"param"`
}

// Equation names the mirror of r, e.g. "y = 0" or "x = 2.5".
func (r Reflection) Equation() string {
	switch r.Kind {
	case XAxis:
		return "y = 0"
	case YAxis:
		return "x = 0"
	case Origin:
		return "(0, 0)"
	case LineYEqualsX:
		return "y = x"
	case LineYEqualsNegX:
		return "y = -x"
	case Horizontal:
		return "y = " + FormatNumber(r.Param)
	case Vertical:
		return "x = " + FormatNumber(r.Param)
	}
	return ""
}

// Reflect maps p to its mirror image under r. A Kind outside the declared
// set leaves the point unchanged.
func Reflect(p Point, r Reflection) Point {
	x, y := p.X, p.Y
	switch r.Kind {
	case XAxis:
		return Point{x, -y}
	case YAxis:
		return Point{-x, y}
	case Origin:
		return Point{-x, -y}
	case LineYEqualsX:
		return Point{y, x}
	case LineYEqualsNegX:
		return Point{-y, -x}
	case Horizontal:
		return Point{x, 2*r.Param - y}
	case Vertical:
		return Point{2*r.Param - x, y}
	}
	return p
}

// ReflectAll applies Reflect to every point, preserving order.
func ReflectAll(points []Point, r Reflection) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Reflect(p, r)
	}
	return out
}
