// Package server serves the reflection tool over HTTP: the app and theory
// pages, the form endpoint, chart downloads and a websocket for live
// re-rendering.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/buffos/go-reflections/internal/export"
	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/render"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// CookieName holds the session ID.
const CookieName = "reflect_session"

// exportFormats are served as /export.<format>.
var exportFormats = []string{"png", "jpg", "pdf", "json", "toml", "html"}

// Server is an http.Handler for the reflection tool.
type Server struct {
	Sessions *session.Manager
	Exporter *export.Exporter
	Log      logrus.FieldLogger

	mux      *http.ServeMux
	upgrader websocket.Upgrader
	exports  *exportCache
	now      func() time.Time
}

// New returns a server backed by the given session manager. The exporter
// supplies the render options and chart style used by every page. Up to
// cacheSize rendered downloads are kept; zero disables the cache.
func New(sessions *session.Manager, exporter *export.Exporter, cacheSize int, log logrus.FieldLogger) *Server {
	s := &Server{
		Sessions: sessions,
		Exporter: exporter,
		Log:      log,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
		},
		exports: newExportCache(cacheSize),
		now:     time.Now,
	}
	s.mux.HandleFunc("GET /{$}", s.withSession(s.handleIndex))
	s.mux.HandleFunc("GET /theory", s.handleTheory)
	s.mux.HandleFunc("POST /action", s.withSession(s.handleAction))
	s.mux.HandleFunc("POST /import", s.withSession(s.handleImport))
	s.mux.HandleFunc("POST /reset", s.withSession(s.handleReset))
	s.mux.HandleFunc("GET /chart.svg", s.withSession(s.handleChart))
	for _, f := range exportFormats {
		s.mux.HandleFunc("GET /export."+f, s.withSession(s.exportHandler(f)))
	}
	s.mux.HandleFunc("GET /ws", s.withSession(s.handleWebsocket))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"url":    r.URL.String(),
		"addr":   r.RemoteAddr,
	}).Debug("request")
	s.mux.ServeHTTP(w, r)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the session from the cookie, creating one (and
// setting the cookie) on first visit or after expiry.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw string
		if c, err := r.Cookie(CookieName); err == nil {
			raw = c.Value
		}
		sess, created := s.Sessions.GetOrCreate(raw)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sess.ID.String(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		h(w, r, sess)
	}
}

func (s *Server) view(sess *session.Session) (render.View, error) {
	return render.BuildView(sess.Snapshot(), s.Exporter.Options, s.Exporter.Style)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	v, err := s.view(sess)
	if err != nil {
		s.serverError(w, sess, err)
		return
	}
	page, err := render.GenerateHTML(v)
	if err != nil {
		s.serverError(w, sess, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handleTheory(w http.ResponseWriter, r *http.Request) {
	page, err := render.GenerateTheoryHTML()
	if err != nil {
		s.serverError(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := parseAction(r, sess.Snapshot())
	if err != nil {
		s.Log.WithFields(logrus.Fields{"session": sess.ID}).WithError(err).Info("rejected form")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Apply(a, s.now())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// maxFigureSize bounds uploaded figure files.
const maxFigureSize = 1 << 20

// handleImport replaces the session's figure with an uploaded JSON or TOML
// figure file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFigureSize)
	file, header, err := r.FormFile("figure")
	if err != nil {
		http.Error(w, "missing figure file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fig, err := export.DecodeFigure(data, header.Filename, s.Log)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Load(fig.Points, fig.Reflection, s.now())
	s.Log.WithFields(logrus.Fields{"session": sess.ID, "file": header.Filename, "points": len(fig.Points)}).Info("imported figure")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset forgets the session; the redirect starts a fresh one with the
// default figure.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.Sessions.Delete(sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseAction reads the app form. Coordinates that are absent or blank keep
// their current value; kind and param default to the current reflection.
func parseAction(r *http.Request, cur session.Snapshot) (session.Action, error) {
	var a session.Action

	if len(cur.Points) > 0 {
		a.Points = make([]geometry.Point, len(cur.Points))
		copy(a.Points, cur.Points)
		for i := range a.Points {
			x, err := formFloat(r, fmt.Sprintf("x_%d", i), a.Points[i].X)
			if err != nil {
				return a, err
			}
			y, err := formFloat(r, fmt.Sprintf("y_%d", i), a.Points[i].Y)
			if err != nil {
				return a, err
			}
			a.Points[i] = geometry.Point{X: x, Y: y}
		}
	}

	for _, v := range r.Form["remove"] {
		idx, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return a, fmt.Errorf("invalid vertex index %q", v)
		}
		a.Remove = append(a.Remove, idx)
	}

	if v := r.FormValue("add"); v != "" {
		add, err := cast.ToBoolE(v)
		if err != nil {
			return a, fmt.Errorf("invalid add flag %q", v)
		}
		a.Add = add
	}

	refl := cur.Reflection
	changed := false
	if v := strings.TrimSpace(r.FormValue("kind")); v != "" {
		k, err := geometry.ParseKind(v)
		if err != nil {
			return a, err
		}
		refl.Kind = k
		changed = true
	}
	if _, ok := r.Form["param"]; ok {
		p, err := formFloat(r, "param", refl.Param)
		if err != nil {
			return a, err
		}
		refl.Param = p
		changed = true
	}
	if changed {
		a.Reflection = &refl
	}
	return a, nil
}

func formFloat(r *http.Request, key string, def float64) (float64, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || !geometry.IsFinite(f) {
		return 0, fmt.Errorf("invalid number %q for %s", v, key)
	}
	return f, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	v, err := s.view(sess)
	if err != nil {
		s.serverError(w, sess, err)
		return
	}
	if v.Scene.Empty {
		http.Error(w, render.EmptyPrompt, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", export.ContentType("svg"))
	fmt.Fprint(w, v.SVG)
}

func (s *Server) exportHandler(format string) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		snap := sess.Snapshot()
		key, err := cacheKey(snap, format)
		if err != nil {
			s.serverError(w, sess, err)
			return
		}
		body, ok := s.exports.get(key)
		if !ok {
			var buf bytes.Buffer
			if err := s.Exporter.Write(r.Context(), snap, format, &buf); err != nil {
				if errors.Is(err, render.ErrEmptyScene) {
					http.Error(w, render.EmptyPrompt, http.StatusNotFound)
					return
				}
				s.serverError(w, sess, err)
				return
			}
			body = buf.Bytes()
			s.exports.add(key, body)
		}
		w.Header().Set("Content-Type", export.ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reflection.%s"`, format))
		w.Write(body)
	}
}

func (s *Server) serverError(w http.ResponseWriter, sess *session.Session, err error) {
	log := s.Log.WithError(err)
	if sess != nil {
		log = log.WithField("session", sess.ID)
	}
	log.Error("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
