package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/buffos/go-reflections/internal/export"
	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/render"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/gorilla/websocket"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	log, _ := test.NewNullLogger()
	exp, err := export.NewExporter(render.Options{}, render.DefaultChartStyle(), export.BackendPlot, log)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	ts := httptest.NewServer(New(session.NewManager(time.Hour, log), exp, DefaultCacheSize, log))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", u, err)
	}
	return resp, string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", u, err)
	}
	return resp, string(body)
}

func figure(t *testing.T, c *http.Client, base string) export.Figure {
	t.Helper()
	resp, body := get(t, c, base+"/export.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export.json status %d: %s", resp.StatusCode, body)
	}
	var fig export.Figure
	if err := json.Unmarshal([]byte(body), &fig); err != nil {
		t.Fatalf("decoding figure: %v", err)
	}
	return fig
}

func TestIndexCreatesSession(t *testing.T) {
	ts, c := newTestServer(t)
	resp, body := get(t, c, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	u, _ := url.Parse(ts.URL)
	cookies := c.Jar.Cookies(u)
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected a %s cookie, got %v", CookieName, cookies)
	}
	for _, want := range []string{`name="x_2"`, "<svg", "Reflection across the x-axis"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page does not contain %q", want)
		}
	}

	// The same cookie resolves to the same session.
	get(t, c, ts.URL+"/")
	if got := c.Jar.Cookies(u); got[0].Value != cookies[0].Value {
		t.Errorf("session cookie changed from %s to %s", cookies[0].Value, got[0].Value)
	}
}

func TestActionFlow(t *testing.T) {
	ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")

	resp, body := post(t, c, ts.URL+"/action", url.Values{
		"x_0":   {"5"},
		"y_0":   {"-2.5"},
		"kind":  {"horizontal"},
		"param": {"4"},
	})
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/" {
		t.Fatalf("expected redirect to /, got %d at %s", resp.StatusCode, resp.Request.URL)
	}
	if !strings.Contains(body, `value="5"`) {
		t.Error("updated coordinate not shown in the page")
	}

	want := export.Figure{
		Points:     []geometry.Point{{X: 5, Y: -2.5}, {X: 3, Y: 1}, {X: 2, Y: 3}},
		Reflection: geometry.Reflection{Kind: geometry.Horizontal, Param: 4},
	}
	if diff := pretty.Diff(figure(t, c, ts.URL), want); len(diff) > 0 {
		t.Errorf("figure mismatch:\n%s", strings.Join(diff, "\n"))
	}

	post(t, c, ts.URL+"/action", url.Values{"add": {"1"}})
	if fig := figure(t, c, ts.URL); len(fig.Points) != 4 || !fig.Points[3].Equal(geometry.Point{}) {
		t.Errorf("add did not append the origin: %v", fig.Points)
	}
}

func TestRemoveLastVertexWarns(t *testing.T) {
	ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")

	_, body := post(t, c, ts.URL+"/action", url.Values{"remove": {"0", "1", "2"}})
	if !strings.Contains(body, session.WarningLastPoint) {
		t.Error("expected the last-vertex warning")
	}
	fig := figure(t, c, ts.URL)
	if diff := pretty.Diff(fig.Points, []geometry.Point{{X: 1, Y: 1}}); len(diff) > 0 {
		t.Errorf("points mismatch:\n%s", strings.Join(diff, "\n"))
	}

	// The warning lasts until the next action.
	_, body = post(t, c, ts.URL+"/action", url.Values{"x_0": {"2"}})
	if strings.Contains(body, session.WarningLastPoint) {
		t.Error("warning was not cleared by the next action")
	}
}

func TestActionRejectsBadInput(t *testing.T) {
	ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")

	for name, form := range map[string]url.Values{
		"number": {"x_0": {"one"}},
		"index":  {"remove": {"first"}},
		"kind":   {"kind": {"diagonal"}},
		"param":  {"kind": {"vertical"}, "param": {"1,5"}},
		"nan":    {"x_0": {"NaN"}},
		"inf":    {"y_2": {"-Inf"}},
		"inf k":  {"kind": {"horizontal"}, "param": {"+Inf"}},
	} {
		t.Run(name, func(t *testing.T) {
			resp, _ := post(t, c, ts.URL+"/action", form)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status %d, want 400", resp.StatusCode)
			}
		})
	}

	if fig := figure(t, c, ts.URL); fig.Reflection.Kind != geometry.XAxis || fig.Points[0].X != 1 {
		t.Errorf("rejected input changed the session: %+v", fig)
	}
}

func upload(t *testing.T, c *http.Client, u, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("figure", filename)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, content)
	mw.Close()
	resp, err := c.Post(u, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	resp.Body.Close()
	return resp
}

func TestImportAndReset(t *testing.T) {
	ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")

	resp := upload(t, c, ts.URL+"/import", "square.toml", `
[reflection]
kind = "y=x"

[[points]]
x = 0.0
y = 0.0

[[points]]
x = 2.0
y = 0.0

[[points]]
x = 2.0
y = 2.0

[[points]]
x = 0.0
y = 2.0
`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status %d", resp.StatusCode)
	}
	fig := figure(t, c, ts.URL)
	if len(fig.Points) != 4 || fig.Reflection.Kind != geometry.LineYEqualsX {
		t.Errorf("import not applied: %+v", fig)
	}

	if resp := upload(t, c, ts.URL+"/import", "bad.json", `{"points":`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad import: status %d, want 400", resp.StatusCode)
	}
	if resp := upload(t, c, ts.URL+"/import", "nan.toml", "points = [{x = nan, y = 1}]\n"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("NaN figure: status %d, want 400", resp.StatusCode)
	}

	post(t, c, ts.URL+"/action", url.Values{"remove": {"0"}})
	post(t, c, ts.URL+"/reset", nil)
	want := export.Figure{
		Points:     []geometry.Point{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 3}},
		Reflection: geometry.Reflection{Kind: geometry.XAxis},
	}
	if diff := pretty.Diff(figure(t, c, ts.URL), want); len(diff) > 0 {
		t.Errorf("reset did not restore the default figure:\n%s", strings.Join(diff, "\n"))
	}
}

func TestDownloads(t *testing.T) {
	ts, c := newTestServer(t)

	resp, body := get(t, c, ts.URL+"/chart.svg")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body, "<svg") {
		t.Errorf("chart.svg: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("chart.svg content type %q", ct)
	}

	for _, f := range []string{"png", "pdf", "toml", "html"} {
		resp, _ := get(t, c, ts.URL+"/export."+f)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("export.%s: status %d", f, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != export.ContentType(f) {
			t.Errorf("export.%s: content type %q", f, ct)
		}
	}

	resp, body = get(t, c, ts.URL+"/theory")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Theory of geometric reflection") {
		t.Errorf("theory: status %d", resp.StatusCode)
	}

	resp, _ = get(t, c, ts.URL+"/nowhere")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path: status %d", resp.StatusCode)
	}
}

func TestWebsocketUpdates(t *testing.T) {
	ts, c := newTestServer(t)
	get(t, c, ts.URL+"/")

	u, _ := url.Parse(ts.URL)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		header.Add("Cookie", ck.String())
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"reflection": map[string]any{"kind": "y-axis"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var u1 Update
	if err := conn.ReadJSON(&u1); err != nil {
		t.Fatalf("read: %v", err)
	}
	if u1.Error != "" || !strings.HasPrefix(u1.SVG, "<svg") {
		t.Fatalf("unexpected update: %# v", pretty.Formatter(u1))
	}
	wantLabels := []string{"A (1, 1)", "A' (-1, 1)", "B (3, 1)", "B' (-3, 1)", "C (2, 3)", "C' (-2, 3)"}
	if diff := pretty.Diff(u1.Labels, wantLabels); len(diff) > 0 {
		t.Errorf("labels mismatch:\n%s", strings.Join(diff, "\n"))
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"reflection":{"kind":"sideways"}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var u2 Update
	if err := conn.ReadJSON(&u2); err != nil {
		t.Fatalf("read: %v", err)
	}
	if u2.Error == "" {
		t.Error("expected an error for an unknown kind")
	}

	if err := conn.WriteJSON(map[string]any{"remove": []int{0, 1, 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var u3 Update
	if err := conn.ReadJSON(&u3); err != nil {
		t.Fatalf("read: %v", err)
	}
	if u3.Warning != session.WarningLastPoint || len(u3.Labels) != 2 || !u3.Reload {
		t.Errorf("unexpected update after removing everything: %# v", pretty.Formatter(u3))
	}

	// Changes made over the socket belong to the page's session.
	if fig := figure(t, c, ts.URL); fig.Reflection.Kind != geometry.YAxis {
		t.Errorf("kind = %v, want y-axis", fig.Reflection.Kind)
	}
}

func TestParseActionKeepsBlankFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/action", strings.NewReader("x_0=&y_1=7"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatal(err)
	}
	cur := session.Snapshot{
		Points:     []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		Reflection: geometry.Reflection{Kind: geometry.Origin},
	}
	a, err := parseAction(r, cur)
	if err != nil {
		t.Fatalf("parseAction: %v", err)
	}
	want := session.Action{Points: []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 7}}}
	if diff := pretty.Diff(a, want); len(diff) > 0 {
		t.Errorf("action mismatch:\n%s", strings.Join(diff, "\n"))
	}
}
