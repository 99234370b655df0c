package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/hexsight/internal/report"
)

// wsMsg is the envelope for every websocket message in both directions.
type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || s.origin == "*" || o == s.origin
	}}
}

// handleWSRuler keeps a ruler session open. Each inbound {"type":"shot"} message
// is evaluated both ways and answered with {"type":"ruler"} or {"type":"error"}.
// The session holds no engine state; the client sends the whole shot every time.
func (s *Server) handleWSRuler(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws: upgrade")
		return
	}
	id := uuid.New().String()
	log.Info().Str("session", id).Str("remote", r.RemoteAddr).Msg("ws: connect")
	defer func() {
		_ = conn.Close()
		log.Info().Str("session", id).Msg("ws: closed")
	}()

	if err := conn.WriteJSON(wsMsg{Type: "session", Data: map[string]string{"id": id}}); err != nil {
		return
	}
	for {
		var in clientIn
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("session", id).Msg("ws: read")
			}
			return
		}
		out := s.wsHandle(in)
		if err := conn.WriteJSON(out); err != nil {
			log.Debug().Err(err).Str("session", id).Msg("ws: write")
			return
		}
	}
}

func (s *Server) wsHandle(in clientIn) wsMsg {
	switch in.Type {
	case "shot":
		var req shotReq
		if err := json.Unmarshal(in.Data, &req); err != nil {
			return wsMsg{Type: "error", Data: errorRes{Error: "bad_json", Detail: err.Error()}}
		}
		g, err := s.geometry(req)
		if err != nil {
			return wsMsg{Type: "error", Data: errorRes{Error: "bad_request", Detail: err.Error()}}
		}
		rep, err := report.Ruler(s.engine, g)
		if err != nil {
			if _, code := errorCode(err); code != "internal" {
				return wsMsg{Type: "error", Data: errorRes{Error: code, Detail: err.Error()}}
			}
			log.Error().Err(err).Msg("ws: ruler")
			return wsMsg{Type: "error", Data: errorRes{Error: "internal"}}
		}
		return wsMsg{Type: "ruler", Data: toRulerRes(rep)}
	case "ping":
		return wsMsg{Type: "pong"}
	default:
		return wsMsg{Type: "error", Data: errorRes{Error: "unknown_type", Detail: in.Type}}
	}
}
