package server

import (
	"encoding/json"
	"net/http"

	"github.com/buffos/go-reflections/internal/render"
	"github.com/buffos/go-reflections/internal/session"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Update is the message sent back over /ws after every action.
type Update struct {
	SVG         string   `json:"svg,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Explanation string   `json:"explanation"`
	Warning     string   `json:"warning,omitempty"`
	ParamName   string   `json:"param_name,omitempty"`
	Labels      []string `json:"labels"`
	// Reload asks the page to reload because the vertex rows changed.
	Reload bool   `json:"reload,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newUpdate(v render.View) Update {
	u := Update{
		SVG:         v.SVG,
		Explanation: v.Explanation,
		Warning:     v.Snapshot.Warning,
		ParamName:   v.Snapshot.Reflection.Kind.ParamName(),
		Labels:      []string{},
	}
	if v.Scene.Empty {
		u.Prompt = render.EmptyPrompt
	}
	for i := range v.Scene.Original.Vertices {
		u.Labels = append(u.Labels, v.Scene.Original.Vertices[i].Text, v.Scene.Reflected.Vertices[i].Text)
	}
	return u
}

// handleWebsocket applies each JSON action received on the connection and
// answers with a fresh render of the session.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		s.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.Log.WithFields(logrus.Fields{"session": sess.ID, "addr": r.RemoteAddr})
	log.Debug("websocket connected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		var a session.Action
		if err := json.Unmarshal(msg, &a); err != nil {
			if err := conn.WriteJSON(Update{Error: err.Error(), Labels: []string{}}); err != nil {
				return
			}
			continue
		}
		sess.Apply(a, s.now())

		v, err := s.view(sess)
		if err != nil {
			log.WithError(err).Error("rendering websocket update")
			if err := conn.WriteJSON(Update{Error: "render failed", Labels: []string{}}); err != nil {
				return
			}
			continue
		}
		u := newUpdate(v)
		u.Reload = a.Structural()
		if err := conn.WriteJSON(u); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}
