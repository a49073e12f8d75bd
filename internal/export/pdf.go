package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/buffos/go-reflections/internal/render"
	"github.com/jung-kurt/gofpdf"
)

// Page geometry of the worksheet chart, in millimetres.
const (
	pdfChartX = 20.0
	pdfChartY = 32.0
	pdfChartW = 170.0
	pdfChartH = 120.0
)

type rgb struct{ r, g, b int }

var (
	pdfOriginal  = rgb{0x1f, 0x77, 0xb4}
	pdfReflected = rgb{0xd6, 0x27, 0x28}
	pdfMirror    = rgb{0x2c, 0xa0, 0x2c}
	pdfGrid      = rgb{0xd3, 0xd3, 0xd3}
)

// pdfFrame maps data coordinates onto the chart box of the page.
type pdfFrame struct {
	v render.Viewport
}

func (f pdfFrame) x(v float64) float64 {
	return pdfChartX + (v-f.v.X.Min)/f.v.X.Span()*pdfChartW
}

func (f pdfFrame) y(v float64) float64 {
	return pdfChartY + pdfChartH - (v-f.v.Y.Min)/f.v.Y.Span()*pdfChartH
}

// WritePDF writes a one-page worksheet: the chart, the coordinate table and
// the explanation of the reflection.
func WritePDF(sc render.Scene, w io.Writer) error {
	if sc.Empty {
		return render.ErrEmptyScene
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	// The core fonts have no arrow glyph.
	tr := func(s string) string { return cp1252(strings.ReplaceAll(s, "→", "->")) }
	pdf.SetTitle("Reflection worksheet", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Original and reflected figures"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr("Mirror: "+sc.Reflection.Equation()+"   Rule: "+sc.Reflection.Kind.Formula()), "", 1, "C", false, 0, "")

	drawPDFChart(pdf, sc, tr)

	pdf.SetXY(pdfChartX, pdfChartY+pdfChartH+8)
	drawPDFTable(pdf, sc, tr)

	pdf.Ln(4)
	pdf.SetX(pdfChartX)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, tr("About this reflection"), "", 1, "L", false, 0, "")
	pdf.SetX(pdfChartX)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(pdfChartW, 5, tr(render.Explanation(sc.Reflection)), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: writing PDF: %w", err)
	}
	return nil
}

func drawPDFChart(pdf *gofpdf.Fpdf, sc render.Scene, tr func(string) string) {
	f := pdfFrame{v: sc.Viewport}

	pdf.SetFont("Arial", "", 7)
	pdf.SetLineWidth(0.1)
	setDraw(pdf, pdfGrid)
	xs, xLabels := sc.Viewport.X.Ticks(10)
	for i, t := range xs {
		pdf.Line(f.x(t), pdfChartY, f.x(t), pdfChartY+pdfChartH)
		pdf.Text(f.x(t)-2, pdfChartY+pdfChartH+4, xLabels[i])
	}
	ys, yLabels := sc.Viewport.Y.Ticks(10)
	for i, t := range ys {
		pdf.Line(pdfChartX, f.y(t), pdfChartX+pdfChartW, f.y(t))
		pdf.Text(pdfChartX-8, f.y(t)+1, yLabels[i])
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Rect(pdfChartX, pdfChartY, pdfChartW, pdfChartH, "D")

	pdf.ClipRect(pdfChartX, pdfChartY, pdfChartW, pdfChartH, false)
	if sc.Viewport.X.Min <= 0 && sc.Viewport.X.Max >= 0 {
		pdf.Line(f.x(0), pdfChartY, f.x(0), pdfChartY+pdfChartH)
	}
	if sc.Viewport.Y.Min <= 0 && sc.Viewport.Y.Max >= 0 {
		pdf.Line(pdfChartX, f.y(0), pdfChartX+pdfChartW, f.y(0))
	}

	o := sc.Overlay
	setDraw(pdf, pdfMirror)
	pdf.SetTextColor(pdfMirror.r, pdfMirror.g, pdfMirror.b)
	pdf.SetFont("Arial", "", 8)
	if o.Shape == render.OverlayPoint {
		pdf.SetFillColor(pdfMirror.r, pdfMirror.g, pdfMirror.b)
		pdf.Circle(f.x(o.From.X), f.y(o.From.Y), 1.2, "F")
	} else {
		pdf.SetLineWidth(0.4)
		pdf.SetDashPattern([]float64{1, 1.5}, 0)
		pdf.Line(f.x(o.From.X), f.y(o.From.Y), f.x(o.To.X), f.y(o.To.Y))
		pdf.SetDashPattern([]float64{}, 0)
	}
	pdf.Text(f.x(o.LabelAt.X), f.y(o.LabelAt.Y), tr(o.Label))

	drawPDFSeries(pdf, f, sc.Original, pdfOriginal, nil, tr)
	drawPDFSeries(pdf, f, sc.Reflected, pdfReflected, []float64{2.5, 1.5}, tr)
	pdf.ClipEnd()
	pdf.SetTextColor(0, 0, 0)
}

func drawPDFSeries(pdf *gofpdf.Fpdf, f pdfFrame, s render.Series, c rgb, dashes []float64, tr func(string) string) {
	setDraw(pdf, c)
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.SetLineWidth(0.6)
	if dashes != nil {
		pdf.SetDashPattern(dashes, 0)
	}
	for i := 1; i < len(s.Path); i++ {
		pdf.Line(f.x(s.Path[i-1].X), f.y(s.Path[i-1].Y), f.x(s.Path[i].X), f.y(s.Path[i].Y))
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetFont("Arial", "", 8)
	for _, v := range s.Vertices {
		pdf.Circle(f.x(v.Point.X), f.y(v.Point.Y), 0.9, "F")
		pdf.Text(f.x(v.Point.X)+1.5, f.y(v.Point.Y)-1.5, tr(v.Text))
	}
}

func drawPDFTable(pdf *gofpdf.Fpdf, sc render.Scene, tr func(string) string) {
	const colW, rowH = 40.0, 6.0
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, h := range []string{"Vertex", "Original", "Reflected"} {
		pdf.CellFormat(colW, rowH, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i, v := range sc.Original.Vertices {
		pdf.SetX(pdfChartX)
		pdf.CellFormat(colW, rowH, tr(v.Label), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW, rowH, tr(v.Point.String()), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW, rowH, tr(sc.Reflected.Vertices[i].Point.String()), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
}

func setDraw(pdf *gofpdf.Fpdf, c rgb) {
	pdf.SetDrawColor(c.r, c.g, c.b)
}
