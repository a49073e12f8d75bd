package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/buffos/go-reflections/internal/render"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	plotOriginal  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	plotReflected = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	plotMirror    = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

// PlotRasterizer draws a scene directly with gonum/plot. It needs no
// browser, so it is the fallback when Chrome is unavailable.
type PlotRasterizer struct {
	Width, Height vg.Length
}

// NewPlotRasterizer returns a rasterizer producing 8x6 inch images.
func NewPlotRasterizer() *PlotRasterizer {
	return &PlotRasterizer{Width: 8 * vg.Inch, Height: 6 * vg.Inch}
}

// PlotImage writes sc as a PNG or JPEG image to w.
func (r *PlotRasterizer) PlotImage(sc render.Scene, format string, w io.Writer) error {
	format, err := NormalizeImageFormat(format)
	if err != nil {
		return err
	}
	if sc.Empty {
		return render.ErrEmptyScene
	}

	p, err := buildPlot(sc)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(r.Width, r.Height, format)
	if err != nil {
		return fmt.Errorf("export: preparing %s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("export: writing %s image: %w", format, err)
	}
	return nil
}

func buildPlot(sc render.Scene) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Original and reflected figures"
	p.X.Label.Text = "x axis"
	p.Y.Label.Text = "y axis"
	p.X.Min, p.X.Max = sc.Viewport.X.Min, sc.Viewport.X.Max
	p.Y.Min, p.Y.Max = sc.Viewport.Y.Min, sc.Viewport.Y.Max
	p.Add(plotter.NewGrid())

	if err := addMirror(p, sc.Overlay); err != nil {
		return nil, err
	}
	if err := addSeries(p, sc.Original, plotOriginal, nil); err != nil {
		return nil, err
	}
	dashes := []vg.Length{vg.Points(6), vg.Points(4)}
	if err := addSeries(p, sc.Reflected, plotReflected, dashes); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func addSeries(p *plot.Plot, s render.Series, c color.Color, dashes []vg.Length) error {
	path := make(plotter.XYs, len(s.Path))
	for i, pt := range s.Path {
		path[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	line, points, err := plotter.NewLinePoints(path)
	if err != nil {
		return fmt.Errorf("export: plotting %s: %w", s.Name, err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Dashes = dashes
	points.GlyphStyle.Color = c
	points.GlyphStyle.Radius = vg.Points(3)
	points.GlyphStyle.Shape = draw.CircleGlyph{}

	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(s.Vertices)), Labels: make([]string, len(s.Vertices))}
	for i, v := range s.Vertices {
		labels.XYs[i] = plotter.XY{X: v.Point.X, Y: v.Point.Y}
		labels.Labels[i] = v.Text
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("export: labelling %s: %w", s.Name, err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = c
		l.TextStyle[i].XAlign = draw.XLeft
	}
	l.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(4)}

	p.Add(line, points, l)
	p.Legend.Add(s.Name, line, points)
	return nil
}

func addMirror(p *plot.Plot, o render.Overlay) error {
	var marks plotter.XYs
	if o.Shape == render.OverlayPoint {
		marks = plotter.XYs{{X: o.From.X, Y: o.From.Y}}
		s, err := plotter.NewScatter(marks)
		if err != nil {
			return fmt.Errorf("export: plotting mirror point: %w", err)
		}
		s.GlyphStyle.Color = plotMirror
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add("Mirror: "+o.Label, s)
	} else {
		marks = plotter.XYs{{X: o.From.X, Y: o.From.Y}, {X: o.To.X, Y: o.To.Y}}
		l, err := plotter.NewLine(marks)
		if err != nil {
			return fmt.Errorf("export: plotting mirror line: %w", err)
		}
		l.LineStyle.Color = plotMirror
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
		p.Add(l)
		p.Legend.Add("Mirror: "+o.Label, l)
	}

	text, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: o.LabelAt.X, Y: o.LabelAt.Y}},
		Labels: []string{o.Label},
	})
	if err != nil {
		return fmt.Errorf("export: labelling mirror: %w", err)
	}
	text.TextStyle[0].Color = plotMirror
	p.Add(text)
	return nil
}
