package render

import (
	"fmt"
	"math"
	"strings"
)

// getStrokeDashArray returns the stroke-dasharray attribute for a line type,
// scaled to the stroke width. Solid lines get an empty string.
func getStrokeDashArray(styleType string, width int) string {
	if width <= 0 {
		width = 1
	}
	switch styleType {
	case "dotted":
		return fmt.Sprintf(` stroke-dasharray="%d %d"`, width, width*2)
	case "dashed":
		return fmt.Sprintf(` stroke-dasharray="%d %d"`, width*4, width*2)
	}
	return ""
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// escapeXML makes s safe inside SVG text nodes and attribute values.
func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

// niceStep picks a tick spacing of 1, 2 or 5 times a power of ten so that
// roughly target ticks cover span.
func niceStep(span float64, target int) float64 {
	if span <= 0 || target <= 0 {
		return 1
	}
	raw := span / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm < 1.5:
		return mag
	case norm < 3:
		return 2 * mag
	case norm < 7:
		return 5 * mag
	}
	return 10 * mag
}

// ticks lists the multiples of step inside [lo, hi].
func ticks(lo, hi, step float64) []float64 {
	var out []float64
	start := math.Ceil(lo/step) * step
	for v := start; v <= hi+step*1e-9; v += step {
		// Snap accumulated error back onto the step grid.
		snapped := math.Round(v/step) * step
		if math.Abs(snapped) < step*1e-9 {
			snapped = 0
		}
		out = append(out, snapped)
	}
	return out
}

// formatTick prints a tick value with only the decimals the step needs.
func formatTick(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-6))
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// Ticks returns about target evenly spaced labelled positions inside r.
func (r Range) Ticks(target int) (values []float64, labels []string) {
	step := niceStep(r.Span(), target)
	values = ticks(r.Min, r.Max, step)
	for _, v := range values {
		labels = append(labels, formatTick(v, step))
	}
	return values, labels
}
