package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/buffos/go-reflections/internal/render"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/sirupsen/logrus"
)

// Image backends.
const (
	BackendChrome = "chrome"
	BackendPlot   = "plot"
)

// ErrUnknownFormat is returned by Exporter.Write for formats it cannot produce.
var ErrUnknownFormat = errors.New("export: unknown output format")

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"html": "text/html; charset=utf-8",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"pdf":  "application/pdf",
	"json": "application/json",
	"toml": "application/toml",
}

// ContentType returns the MIME type for an output format, or "" when the
// format is unknown.
func ContentType(format string) string {
	return contentTypes[strings.ToLower(format)]
}

// Formats lists the output formats in a stable order.
func Formats() []string {
	return []string{"svg", "html", "png", "jpg", "pdf", "json", "toml"}
}

// Exporter renders snapshots to any supported output format.
type Exporter struct {
	Options render.Options
	Style   render.ChartStyle
	// Backend selects how PNG and JPEG are produced: BackendChrome or
	// BackendPlot.
	Backend string
	Chrome  *ChromeRasterizer
	Plot    *PlotRasterizer
	Log     logrus.FieldLogger
}

// NewExporter returns an exporter using the given image backend.
func NewExporter(opts render.Options, style render.ChartStyle, backend string, log logrus.FieldLogger) (*Exporter, error) {
	switch backend {
	case BackendChrome, BackendPlot:
	default:
		return nil, fmt.Errorf("export: unknown image backend '%s'", backend)
	}
	return &Exporter{
		Options: opts,
		Style:   style,
		Backend: backend,
		Chrome:  NewChromeRasterizer(log),
		Plot:    NewPlotRasterizer(),
		Log:     log,
	}, nil
}

// Write renders snap in format and writes it to w.
func (e *Exporter) Write(ctx context.Context, snap session.Snapshot, format string, w io.Writer) error {
	format = strings.ToLower(format)
	log := e.Log.WithFields(logrus.Fields{"format": format, "points": len(snap.Points)})

	switch format {
	case "json":
		return WriteJSON(FromSnapshot(snap), w)
	case "toml":
		return WriteTOML(FromSnapshot(snap), w)
	}

	view, err := render.BuildView(snap, e.Options, e.Style)
	if err != nil {
		return err
	}

	switch format {
	case "svg":
		return WriteSVG(view, w)
	case "html":
		return WriteHTML(view, w)
	case "pdf":
		return WritePDF(view.Scene, w)
	case "png", "jpg", "jpeg":
		if view.Scene.Empty {
			return render.ErrEmptyScene
		}
		if e.Backend == BackendPlot {
			log.Debug("rasterizing with gonum/plot")
			return e.Plot.PlotImage(view.Scene, format, w)
		}
		return e.Chrome.Rasterize(ctx, view.SVG, format, w)
	}
	return fmt.Errorf("%w: '%s'", ErrUnknownFormat, format)
}

// WriteSVG writes the chart of v.
func WriteSVG(v render.View, w io.Writer) error {
	if v.Scene.Empty {
		return render.ErrEmptyScene
	}
	if _, err := io.WriteString(w, v.SVG); err != nil {
		return fmt.Errorf("export: writing SVG: %w", err)
	}
	return nil
}

// WriteHTML writes a standalone report page for v.
func WriteHTML(v render.View, w io.Writer) error {
	page, err := render.GenerateReportHTML(v)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, page); err != nil {
		return fmt.Errorf("export: writing HTML: %w", err)
	}
	return nil
}
