package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/buffos/go-reflections/internal/store"
)

// EmptyPrompt replaces the chart when the figure has no vertices.
const EmptyPrompt = "Add at least two vertices to see the figure and its reflection. The figure closes automatically."

// View is everything the app page shows for one snapshot.
type View struct {
	Snapshot    session.Snapshot
	Scene       Scene
	SVG         string
	Explanation string
}

// BuildView renders a snapshot into a page model. It does not touch the
// session; call it after every mutating action.
func BuildView(snap session.Snapshot, opts Options, style ChartStyle) (View, error) {
	v := View{
		Snapshot:    snap,
		Scene:       BuildScene(snap, opts),
		Explanation: Explanation(snap.Reflection),
	}
	if v.Scene.Empty {
		return v, nil
	}
	svg, err := GenerateSVG(v.Scene, style)
	if err != nil {
		return v, fmt.Errorf("render: building chart: %w", err)
	}
	v.SVG = svg
	return v, nil
}

type vertexRow struct {
	Index int
	Label string
	X, Y  string
}

type kindOption struct {
	Value    string
	Label    string
	Selected bool
}

type appPage struct {
	Vertices    []vertexRow
	Kinds       []kindOption
	NeedsParam  bool
	ParamName   string
	Param       string
	Warning     string
	Chart       template.HTML
	Prompt      string
	Explanation string
	Rows        []tableRow
}

type tableRow struct {
	Label     string
	Original  string
	Reflected string
}

func newAppPage(v View) appPage {
	r := v.Snapshot.Reflection
	p := appPage{
		NeedsParam:  r.Kind.NeedsParam(),
		ParamName:   r.Kind.ParamName(),
		Param:       geometry.FormatNumber(r.Param),
		Warning:     v.Snapshot.Warning,
		Explanation: v.Explanation,
	}
	for i, pt := range v.Snapshot.Points {
		p.Vertices = append(p.Vertices, vertexRow{
			Index: i,
			Label: store.Label(i),
			X:     geometry.FormatNumber(pt.X),
			Y:     geometry.FormatNumber(pt.Y),
		})
	}
	for _, k := range geometry.AllKinds() {
		p.Kinds = append(p.Kinds, kindOption{Value: k.String(), Label: k.Label(), Selected: k == r.Kind})
	}
	for i := range v.Scene.Original.Vertices {
		p.Rows = append(p.Rows, tableRow{
			Label:     v.Scene.Original.Vertices[i].Label,
			Original:  v.Scene.Original.Vertices[i].Point.String(),
			Reflected: v.Scene.Reflected.Vertices[i].Point.String(),
		})
	}
	if v.SVG != "" {
		// The SVG is produced by GenerateSVG, which escapes every text node.
		p.Chart = template.HTML(v.SVG)
	} else {
		p.Prompt = EmptyPrompt
	}
	return p
}

// GenerateHTML renders the interactive app page.
func GenerateHTML(v View) (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "app", newAppPage(v)); err != nil {
		return "", fmt.Errorf("render: app page: %w", err)
	}
	return buf.String(), nil
}

// GenerateReportHTML renders a standalone, form-free page with the chart,
// the coordinate table and the explanation.
func GenerateReportHTML(v View) (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "report", newAppPage(v)); err != nil {
		return "", fmt.Errorf("render: report page: %w", err)
	}
	return buf.String(), nil
}

// GenerateTheoryHTML renders the theory page.
func GenerateTheoryHTML() (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "theory", Theory()); err != nil {
		return "", fmt.Errorf("render: theory page: %w", err)
	}
	return buf.String(), nil
}

var pages = template.Must(template.New("pages").Parse(pageTemplates))

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.}}</title>
<style>
  body { margin: 0; font-family: Arial, sans-serif; color: #222; }
  nav { background: #2c3e50; padding: 10px 20px; }
  nav a { color: #fff; margin-right: 18px; text-decoration: none; font-weight: bold; }
  main { padding: 20px; }
  h1 { text-align: center; }
  .columns { display: flex; gap: 24px; align-items: flex-start; }
  .inputs { flex: 1; min-width: 280px; }
  .graph { flex: 2; }
  .vertex { display: flex; gap: 6px; align-items: end; margin-bottom: 6px; }
  .vertex label { font-size: 0.85em; display: flex; flex-direction: column; }
  .vertex input { width: 90px; }
  .warning { background: #fff3cd; border: 1px solid #ffe08a; padding: 8px; margin: 8px 0; }
  .info { background: #e8f4fd; border: 1px solid #b6dcf7; padding: 8px; margin: 8px 0; font-size: 0.9em; }
  #chart svg { max-width: 100%; height: auto; cursor: grab; border: 1px solid #eee; }
  table { border-collapse: collapse; margin-top: 12px; }
  td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: center; }
  .example { border-left: 4px solid #2c3e50; padding-left: 12px; margin: 18px 0; }
  code { background: #f4f4f4; padding: 1px 4px; }
</style>
</head>
<body>
<nav><a href="/">Reflections</a><a href="/theory">Theory</a></nav>
<main>
{{end}}

{{define "foot"}}
</main>
</body>
</html>
{{end}}

{{define "chart"}}
<div id="chart">{{if .Chart}}{{.Chart}}{{else}}<p class="info">{{.Prompt}}</p>{{end}}</div>
{{end}}

{{define "table"}}
<table id="coords">
  <tr><th>Vertex</th><th>Original</th><th>Reflected</th></tr>
  {{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Original}}</td><td>{{.Reflected}}</td></tr>
  {{end}}
</table>
{{end}}

{{define "app"}}{{template "head" "Reflections in the Cartesian plane"}}
<h1>Reflections of figures in the Cartesian plane</h1>
<p>Enter the vertices of a figure, choose a reflection and compare the original with its image.</p>
<div class="columns">
<div class="inputs">
<form id="controls" method="post" action="/action">
  <h2>Vertices</h2>
  <p class="info">The figure is closed automatically. Use × to delete a vertex.</p>
  {{if .Warning}}<div class="warning" id="warning">{{.Warning}}</div>{{else}}<div id="warning"></div>{{end}}
  {{range .Vertices}}
  <div class="vertex">
    <label>Vertex {{.Label}} (x)<input type="number" step="any" name="x_{{.Index}}" value="{{.X}}"></label>
    <label>Vertex {{.Label}} (y)<input type="number" step="any" name="y_{{.Index}}" value="{{.Y}}"></label>
    <button type="submit" name="remove" value="{{.Index}}" title="Delete vertex {{.Label}}">×</button>
  </div>
  {{end}}
  <button type="submit" name="add" value="1">Add vertex</button>
  <h2>Reflection</h2>
  <select name="kind" id="kind">
    {{range .Kinds}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
    {{end}}
  </select>
  <label id="param-row"{{if not .NeedsParam}} hidden{{end}}>Value of <span id="param-name">{{.ParamName}}</span>
    <input type="number" step="0.1" name="param" id="param" value="{{.Param}}">
  </label>
  <p><button type="submit">Apply</button></p>
</form>
<p>Export: <a href="/chart.svg">SVG</a> · <a href="/export.png">PNG</a> · <a href="/export.jpg">JPEG</a> · <a href="/export.pdf">PDF</a> · <a href="/export.html">HTML</a> · <a href="/export.json">JSON</a> · <a href="/export.toml">TOML</a></p>
<form method="post" action="/import" enctype="multipart/form-data">
  <label>Open a saved figure <input type="file" name="figure" accept=".json,.toml"></label>
  <button type="submit">Import</button>
</form>
<form method="post" action="/reset"><button type="submit">Start over</button></form>
</div>
<div class="graph">
<h2>Chart</h2>
{{template "chart" .}}
{{template "table" .}}
</div>
</div>
<hr>
<h2>About this reflection</h2>
<p id="explanation">{{.Explanation}}</p>
<script>
(function () {
  var chart = document.getElementById("chart");
  var form = document.getElementById("controls");
  var kind = document.getElementById("kind");

  function attachPanZoom() {
    var svg = chart.querySelector("svg");
    if (!svg) { return; }
    var base = svg.getAttribute("viewBox").split(" ").map(Number);
    var vb = base.slice();
    var drag = null;
    function apply() { svg.setAttribute("viewBox", vb.join(" ")); }
    svg.addEventListener("wheel", function (e) {
      e.preventDefault();
      var f = e.deltaY > 0 ? 1.1 : 1 / 1.1;
      var r = svg.getBoundingClientRect();
      var mx = vb[0] + (e.clientX - r.left) / r.width * vb[2];
      var my = vb[1] + (e.clientY - r.top) / r.height * vb[3];
      vb = [mx - (mx - vb[0]) * f, my - (my - vb[1]) * f, vb[2] * f, vb[3] * f];
      apply();
    });
    svg.addEventListener("mousedown", function (e) { drag = [e.clientX, e.clientY]; });
    window.addEventListener("mouseup", function () { drag = null; });
    svg.addEventListener("mousemove", function (e) {
      if (!drag) { return; }
      var r = svg.getBoundingClientRect();
      vb[0] -= (e.clientX - drag[0]) / r.width * vb[2];
      vb[1] -= (e.clientY - drag[1]) / r.height * vb[3];
      drag = [e.clientX, e.clientY];
      apply();
    });
    svg.addEventListener("dblclick", function () { vb = base.slice(); apply(); });
  }
  attachPanZoom();

  if (!window.WebSocket) { return; }
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");

  function number(el) {
    if (el.value.trim() === "") { return null; }
    var v = Number(el.value);
    return isFinite(v) ? v : null;
  }

  // Nothing is sent while a field is blank; the form keeps the stored value
  // for blank fields too.
  function currentAction() {
    var points = [];
    for (var i = 0; ; i++) {
      var x = form.elements["x_" + i], y = form.elements["y_" + i];
      if (!x || !y) { break; }
      var px = number(x), py = number(y);
      if (px === null || py === null) { return null; }
      points.push({x: px, y: py});
    }
    var param = number(form.elements["param"]);
    if (param === null) { return null; }
    return {points: points, reflection: {kind: kind.value, param: param}};
  }

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.error) { return; }
    if (msg.reload) { location.reload(); return; }
    chart.innerHTML = msg.svg || ("<p class=\"info\">" + msg.prompt + "</p>");
    document.getElementById("explanation").textContent = msg.explanation;
    document.getElementById("warning").textContent = msg.warning || "";
    var row = document.getElementById("param-row");
    row.hidden = !msg.param_name;
    document.getElementById("param-name").textContent = msg.param_name || "";
    attachPanZoom();
  };

  form.addEventListener("input", function () {
    var a = currentAction();
    if (a && ws.readyState === WebSocket.OPEN) { ws.send(JSON.stringify(a)); }
  });
})();
</script>
{{template "foot"}}{{end}}

{{define "report"}}{{template "head" "Reflection report"}}
<h1>Original and reflected figures</h1>
{{template "chart" .}}
{{template "table" .}}
<h2>About this reflection</h2>
<p>{{.Explanation}}</p>
{{template "foot"}}{{end}}

{{define "theory"}}{{template "head" "Theory of geometric reflection"}}
<h1>Theory of geometric reflection</h1>
<h2>What is a reflection?</h2>
<p>A reflection flips a figure over a line called the mirror, or axis of reflection.
Folding the page along the mirror lays the figure exactly on top of its image.</p>
<ul>
  <li><b>Shape and size</b> are preserved: the image is neither stretched nor shrunk.</li>
  <li><b>Orientation</b> is reversed: a figure read left to right is read right to left in its image.</li>
  <li><b>Distance</b>: every point and its image are equally far from the mirror.</li>
</ul>
<h2>Common reflections in the Cartesian plane</h2>
{{range .}}
<div class="example">
  <h3>{{.Title}}</h3>
  <p>{{.Summary}}</p>
  <p>Rule: <code>{{.Formula}}</code></p>
  <p>Example: {{.Working}}</p>
</div>
{{end}}
<p>Head back to the <a href="/">interactive page</a> to try them out.</p>
{{template "foot"}}{{end}}
`
