package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/buffos/go-reflections/internal/geometry"
)

// ErrEmptyScene is returned when asked to draw a scene with no vertices.
var ErrEmptyScene = errors.New("render: no vertices to plot")

// ChartStyle holds sizes and colours of the SVG chart.
type ChartStyle struct {
	Width, Height  float64
	OriginalColor  string
	ReflectedColor string
	MirrorColor    string
	GridColor      string
	FontFamily     string
	FontSize       int
	MarkerRadius   float64
	LineWidth      int
}

// DefaultChartStyle matches the look of the interactive page.
func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		Width:          800,
		Height:         600,
		OriginalColor:  "blue",
		ReflectedColor: "red",
		MirrorColor:    "green",
		GridColor:      "lightgray",
		FontFamily:     "Arial, sans-serif",
		FontSize:       12,
		MarkerRadius:   4,
		LineWidth:      2,
	}
}

func (s ChartStyle) withDefaults() ChartStyle {
	d := DefaultChartStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.OriginalColor == "" {
		s.OriginalColor = d.OriginalColor
	}
	if s.ReflectedColor == "" {
		s.ReflectedColor = d.ReflectedColor
	}
	if s.MirrorColor == "" {
		s.MirrorColor = d.MirrorColor
	}
	if s.GridColor == "" {
		s.GridColor = d.GridColor
	}
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.MarkerRadius <= 0 {
		s.MarkerRadius = d.MarkerRadius
	}
	if s.LineWidth <= 0 {
		s.LineWidth = d.LineWidth
	}
	return s
}

// Plot area margins in pixels.
const (
	marginLeft   = 60.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 50.0
)

// frame maps data coordinates to pixels. The y axis points up in data space
// and down in SVG space.
type frame struct {
	vp              Viewport
	left, top, w, h float64
	width, height   float64
}

func newFrame(vp Viewport, width, height float64) frame {
	return frame{
		vp:     vp,
		left:   marginLeft,
		top:    marginTop,
		w:      width - marginLeft - marginRight,
		h:      height - marginTop - marginBottom,
		width:  width,
		height: height,
	}
}

func (f frame) px(x float64) float64 {
	return f.left + (x-f.vp.X.Min)/f.vp.X.Span()*f.w
}

func (f frame) py(y float64) float64 {
	return f.top + (f.vp.Y.Max-y)/f.vp.Y.Span()*f.h
}

func (f frame) pt(p geometry.Point) (float64, float64) {
	return f.px(p.X), f.py(p.Y)
}

// GenerateSVG draws the scene as a standalone SVG document.
func GenerateSVG(scene Scene, style ChartStyle) (string, error) {
	if scene.Empty || len(scene.Original.Vertices) == 0 {
		return "", ErrEmptyScene
	}
	style = style.withDefaults()
	f := newFrame(scene.Viewport, style.Width, style.Height)

	var svgBody bytes.Buffer
	drawGrid(&svgBody, f, style)

	svgBody.WriteString(`  <g clip-path="url(#plot-area)">` + "\n")
	drawOverlay(&svgBody, f, scene.Overlay, style)
	drawSeries(&svgBody, f, SeriesParams{
		Series:   scene.Original,
		Color:    style.OriginalColor,
		LineType: "solid",
		Style:    style,
		TextDX:   6,
		TextDY:   -6,
		Anchor:   "start",
		Class:    "original",
	})
	drawSeries(&svgBody, f, SeriesParams{
		Series:   scene.Reflected,
		Color:    style.ReflectedColor,
		LineType: "dashed",
		Style:    style,
		TextDX:   -6,
		TextDY:   float64(style.FontSize) + 4,
		Anchor:   "end",
		Class:    "reflected",
	})
	svgBody.WriteString("  </g>\n")

	drawLegend(&svgBody, f, scene, style)

	return assembleFinalSVG(svgBody, f, style), nil
}

func drawGrid(svg *bytes.Buffer, f frame, style ChartStyle) {
	xStep := niceStep(f.vp.X.Span(), 10)
	yStep := niceStep(f.vp.Y.Span(), 10)

	svg.WriteString(`  <g class="grid">` + "\n")
	for _, x := range ticks(f.vp.X.Min, f.vp.X.Max, xStep) {
		px := f.px(x)
		fmt.Fprintf(svg, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" />`+"\n",
			px, f.top, px, f.top+f.h, style.GridColor)
		fmt.Fprintf(svg, `    <text x="%.2f" y="%.2f" font-size="%d" text-anchor="middle" fill="#444">%s</text>`+"\n",
			px, f.top+f.h+16, style.FontSize-1, formatTick(x, xStep))
	}
	for _, y := range ticks(f.vp.Y.Min, f.vp.Y.Max, yStep) {
		py := f.py(y)
		fmt.Fprintf(svg, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" />`+"\n",
			f.left, py, f.left+f.w, py, style.GridColor)
		fmt.Fprintf(svg, `    <text x="%.2f" y="%.2f" font-size="%d" text-anchor="end" dominant-baseline="middle" fill="#444">%s</text>`+"\n",
			f.left-6, py, style.FontSize-1, formatTick(y, yStep))
	}
	// Zero lines, only when the axis is on screen.
	if f.vp.X.Min <= 0 && f.vp.X.Max >= 0 {
		fmt.Fprintf(svg, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#999" stroke-width="1.5" />`+"\n",
			f.px(0), f.top, f.px(0), f.top+f.h)
	}
	if f.vp.Y.Min <= 0 && f.vp.Y.Max >= 0 {
		fmt.Fprintf(svg, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#999" stroke-width="1.5" />`+"\n",
			f.left, f.py(0), f.left+f.w, f.py(0))
	}
	fmt.Fprintf(svg, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#666" stroke-width="1" />`+"\n",
		f.left, f.top, f.w, f.h)
	svg.WriteString("  </g>\n")
}

func drawOverlay(svg *bytes.Buffer, f frame, o Overlay, style ChartStyle) {
	if o.Label == "" {
		return
	}
	svg.WriteString(`    <g class="mirror">` + "\n")
	if o.Shape == OverlayPoint {
		x, y := f.pt(o.From)
		fmt.Fprintf(svg, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`+"\n",
			x, y, style.MarkerRadius+1, style.MirrorColor, escapeXML(o.Label))
	} else {
		x1, y1 := f.pt(o.From)
		x2, y2 := f.pt(o.To)
		fmt.Fprintf(svg, `      <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%d"%s><title>%s</title></line>`+"\n",
			x1, y1, x2, y2, style.MirrorColor, style.LineWidth,
			getStrokeDashArray("dotted", style.LineWidth), escapeXML(o.Label))
	}
	lx, ly := f.pt(o.LabelAt)
	fmt.Fprintf(svg, `      <text x="%.2f" y="%.2f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`+"\n",
		lx, ly, style.FontSize, style.MirrorColor, escapeXML(o.Label))
	svg.WriteString("    </g>\n")
}

// SeriesParams groups the arguments of drawSeries.
type SeriesParams struct {
	Series   Series
	Color    string
	LineType string
	Style    ChartStyle
	TextDX   float64
	TextDY   float64
	Anchor   string
	Class    string
}

func drawSeries(svg *bytes.Buffer, f frame, params SeriesParams) {
	fmt.Fprintf(svg, `    <g class="%s">`+"\n", params.Class)

	if len(params.Series.Path) > 1 {
		svg.WriteString(`      <polyline points="`)
		for i, p := range params.Series.Path {
			if i > 0 {
				svg.WriteByte(' ')
			}
			x, y := f.pt(p)
			fmt.Fprintf(svg, "%.2f,%.2f", x, y)
		}
		fmt.Fprintf(svg, `" fill="none" stroke="%s" stroke-width="%d" stroke-linejoin="round"%s />`+"\n",
			params.Color, params.Style.LineWidth, getStrokeDashArray(params.LineType, params.Style.LineWidth))
	}

	for _, v := range params.Series.Vertices {
		x, y := f.pt(v.Point)
		fmt.Fprintf(svg, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`+"\n",
			x, y, params.Style.MarkerRadius, params.Color, escapeXML(v.Text))
		fmt.Fprintf(svg, `      <text x="%.2f" y="%.2f" font-size="%d" fill="%s" text-anchor="%s">%s</text>`+"\n",
			x+params.TextDX, y+params.TextDY, params.Style.FontSize, params.Color, params.Anchor, escapeXML(v.Text))
	}
	svg.WriteString("    </g>\n")
}

func drawLegend(svg *bytes.Buffer, f frame, scene Scene, style ChartStyle) {
	type entry struct {
		name, color, lineType string
	}
	entries := []entry{
		{scene.Original.Name, style.OriginalColor, "solid"},
		{scene.Reflected.Name, style.ReflectedColor, "dashed"},
	}
	if scene.Overlay.Label != "" {
		entries = append(entries, entry{"Mirror: " + scene.Reflection.Equation(), style.MirrorColor, "dotted"})
	}

	rowH := float64(style.FontSize) + 6
	boxW := 190.0
	boxH := rowH*float64(len(entries)) + 8
	x0 := f.left + f.w - boxW - 8
	y0 := f.top + 8

	svg.WriteString(`  <g class="legend">` + "\n")
	fmt.Fprintf(svg, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#FFFFFF" fill-opacity="0.85" stroke="#ccc" />`+"\n",
		x0, y0, boxW, boxH)
	for i, e := range entries {
		cy := y0 + 4 + rowH*float64(i) + rowH/2
		fmt.Fprintf(svg, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%d"%s />`+"\n",
			x0+8, cy, x0+36, cy, e.color, style.LineWidth, getStrokeDashArray(e.lineType, style.LineWidth))
		fmt.Fprintf(svg, `    <text x="%.2f" y="%.2f" font-size="%d" dominant-baseline="middle">%s</text>`+"\n",
			x0+44, cy, style.FontSize, escapeXML(e.name))
	}
	svg.WriteString("  </g>\n")
}

// assembleFinalSVG wraps the body with the root element, background, clip
// path and titles.
func assembleFinalSVG(svgBody bytes.Buffer, f frame, style ChartStyle) string {
	width := math.Max(f.width, 10)
	height := math.Max(f.height, 10)

	var finalSVG bytes.Buffer
	fmt.Fprintf(&finalSVG, `<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg" font-family="%s">`,
		width, height, width, height, escapeXML(style.FontFamily))
	finalSVG.WriteString("\n")
	fmt.Fprintf(&finalSVG, `  <rect width="%.0f" height="%.0f" fill="#FFFFFF" />`+"\n", width, height)
	finalSVG.WriteString("  <defs>\n")
	fmt.Fprintf(&finalSVG, `    <clipPath id="plot-area"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" /></clipPath>`+"\n",
		f.left, f.top, f.w, f.h)
	finalSVG.WriteString("  </defs>\n")
	fmt.Fprintf(&finalSVG, `  <text x="%.2f" y="%.2f" font-size="%d" font-weight="bold" text-anchor="middle">Original and reflected figures</text>`+"\n",
		width/2, marginTop/2, style.FontSize+4)
	fmt.Fprintf(&finalSVG, `  <text x="%.2f" y="%.2f" font-size="%d" text-anchor="middle">x</text>`+"\n",
		f.left+f.w/2, height-10, style.FontSize)
	fmt.Fprintf(&finalSVG, `  <text x="%.2f" y="%.2f" font-size="%d" text-anchor="middle" transform="rotate(-90 %.2f %.2f)">y</text>`+"\n",
		16.0, f.top+f.h/2, style.FontSize, 16.0, f.top+f.h/2)
	finalSVG.Write(svgBody.Bytes())
	finalSVG.WriteString("</svg>")
	return finalSVG.String()
}
