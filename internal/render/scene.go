// Package render turns a session snapshot into a chart: two labelled
// polylines, a padded viewport and an overlay for the mirror line.
package render

import (
	"math"

	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/buffos/go-reflections/internal/store"
	"gonum.org/v1/gonum/floats"
)

// DefaultPadding is the margin added around the data on every side.
const DefaultPadding = 1.5

// defaultRange is used on both axes when there is nothing to plot.
const defaultRange = 5.0

// Options tune scene construction.
type Options struct {
	Padding float64
}

func (o Options) padding() float64 {
	if o.Padding <= 0 {
		return DefaultPadding
	}
	return o.Padding
}

// Range is a closed interval on one axis.
type Range struct {
	Min, Max float64
}

// Span is Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Viewport is the visible data window.
type Viewport struct {
	X, Y Range
}

// Vertex is one labelled point of a series.
type Vertex struct {
	Label string
	Point geometry.Point
	Text  string // "A (1, 1)" or "A' (1, -1)"
}

// Series is a drawable polyline. Path repeats the first vertex at the end
// when the figure is closed; Vertices never does.
type Series struct {
	Name     string
	Vertices []Vertex
	Path     []geometry.Point
}

// OverlayShape says how the mirror is drawn.
type OverlayShape int

const (
	OverlayLine OverlayShape = iota
	OverlayPoint
)

// Overlay is the visual aid for the active reflection.
type Overlay struct {
	Shape    OverlayShape
	From, To geometry.Point // line endpoints; From is the marker for OverlayPoint
	Label    string
	LabelAt  geometry.Point
}

// Scene is everything needed to draw one chart. It is a pure function of
// the snapshot it was built from.
type Scene struct {
	Empty      bool
	Closed     bool
	Reflection geometry.Reflection
	Original   Series
	Reflected  Series
	Viewport   Viewport
	Overlay    Overlay
}

// BuildScene runs the rendering pipeline on a snapshot.
func BuildScene(snap session.Snapshot, opts Options) Scene {
	sc := Scene{Reflection: snap.Reflection}
	sc.Original.Name = "Original figure"
	sc.Reflected.Name = "Reflected figure"

	if len(snap.Points) == 0 {
		sc.Empty = true
		sc.Viewport = Viewport{
			X: Range{-defaultRange, defaultRange},
			Y: Range{-defaultRange, defaultRange},
		}
		sc.Overlay = buildOverlay(snap.Reflection, sc.Viewport)
		return sc
	}

	reflected := geometry.ReflectAll(snap.Points, snap.Reflection)
	for i, p := range snap.Points {
		label := store.Label(i)
		rp := reflected[i]
		sc.Original.Vertices = append(sc.Original.Vertices, Vertex{
			Label: label, Point: p, Text: label + " " + p.String(),
		})
		sc.Reflected.Vertices = append(sc.Reflected.Vertices, Vertex{
			Label: label + "'", Point: rp, Text: label + "' " + rp.String(),
		})
		sc.Original.Path = append(sc.Original.Path, p)
		sc.Reflected.Path = append(sc.Reflected.Path, rp)
	}

	n := len(snap.Points)
	if n >= 2 && !snap.Points[0].Equal(snap.Points[n-1]) {
		sc.Closed = true
		sc.Original.Path = append(sc.Original.Path, sc.Original.Path[0])
		sc.Reflected.Path = append(sc.Reflected.Path, sc.Reflected.Path[0])
	}

	sc.Viewport = computeViewport(sc.Original.Path, sc.Reflected.Path, opts.padding())
	sc.Overlay = buildOverlay(snap.Reflection, sc.Viewport)
	return sc
}

func computeViewport(a, b []geometry.Point, pad float64) Viewport {
	if len(a)+len(b) == 0 {
		return Viewport{
			X: Range{-defaultRange, defaultRange},
			Y: Range{-defaultRange, defaultRange},
		}
	}
	xs := make([]float64, 0, len(a)+len(b))
	ys := make([]float64, 0, len(a)+len(b))
	for _, pts := range [][]geometry.Point{a, b} {
		for _, p := range pts {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	return Viewport{
		X: Range{floats.Min(xs) - pad, floats.Max(xs) + pad},
		Y: Range{floats.Min(ys) - pad, floats.Max(ys) + pad},
	}
}

// buildOverlay places the mirror line across the viewport, with the label
// positions used by the interactive chart.
func buildOverlay(r geometry.Reflection, v Viewport) Overlay {
	o := Overlay{Label: r.Equation()}
	switch r.Kind {
	case geometry.XAxis:
		o.Label = "x-axis"
		o.From = geometry.Point{X: v.X.Min, Y: 0}
		o.To = geometry.Point{X: v.X.Max, Y: 0}
		o.LabelAt = geometry.Point{X: v.X.Max * 0.9, Y: 0.5}
	case geometry.YAxis:
		o.Label = "y-axis"
		o.From = geometry.Point{X: 0, Y: v.Y.Min}
		o.To = geometry.Point{X: 0, Y: v.Y.Max}
		o.LabelAt = geometry.Point{X: 0.5, Y: v.Y.Max * 0.9}
	case geometry.Origin:
		o.Shape = OverlayPoint
		o.Label = "O (0, 0)"
		o.LabelAt = geometry.Point{X: 0.5, Y: 0.5}
	case geometry.LineYEqualsX:
		lo := math.Min(v.X.Min, v.Y.Min)
		hi := math.Max(v.X.Max, v.Y.Max)
		o.From = geometry.Point{X: lo, Y: lo}
		o.To = geometry.Point{X: hi, Y: hi}
		o.LabelAt = o.To
	case geometry.LineYEqualsNegX:
		lo := math.Min(v.X.Min, v.Y.Min)
		hi := math.Max(v.X.Max, v.Y.Max)
		o.From = geometry.Point{X: lo, Y: -lo}
		o.To = geometry.Point{X: hi, Y: -hi}
		o.LabelAt = o.From
	case geometry.Horizontal:
		o.From = geometry.Point{X: v.X.Min, Y: r.Param}
		o.To = geometry.Point{X: v.X.Max, Y: r.Param}
		o.LabelAt = geometry.Point{X: v.X.Max * 0.9, Y: r.Param + 0.5}
	case geometry.Vertical:
		o.From = geometry.Point{X: r.Param, Y: v.Y.Min}
		o.To = geometry.Point{X: r.Param, Y: v.Y.Max}
		o.LabelAt = geometry.Point{X: r.Param + 0.5, Y: v.Y.Max * 0.9}
	}
	return o
}
