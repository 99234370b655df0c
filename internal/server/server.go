// Package server exposes the ruler over HTTP and a websocket.
//
// Endpoints:
//   - GET  /health
//   - GET  /board                      board name and size
//   - GET  /distance?from=XXYY&to=XXYY raw range
//   - POST /evaluate                   one shot, attacker to target
//   - POST /ruler                      the shot both ways plus range
//   - GET  /ws/ruler                   live ruler: one report per inbound shot
//
// The board is held as a snapshot and never edited; unit positions come with each
// request and are placed on a per-request copy.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/los"
	"github.com/Garsondee/hexsight/internal/report"
	"github.com/Garsondee/hexsight/internal/terrain"
)

// Server bundles the router, the engine and the board it measures on.
type Server struct {
	r      *chi.Mux
	engine *los.Engine
	board  *terrain.Board
	origin string
}

// New constructs a Server, installs middleware, and registers routes. origin is
// the single CORS origin allowed; "*" allows any.
func New(engine *los.Engine, board *terrain.Board, origin string) *Server {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), engine: engine, board: board.Snapshot(), origin: origin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/board", s.handleBoard)
		r.Get("/distance", s.handleDistance)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/ruler", s.handleRuler)
	})

	// Websocket connections outlive the request timeout.
	s.r.Get("/ws/ruler", s.handleWSRuler)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ payloads -----------------------------------

// shotReq describes one shot. Categories are names ("walker", "vehicle",
// "infantry") and default to walker; units lists occupied hexes.
type shotReq struct {
	Attacker         string       `json:"attacker"`
	Target           string       `json:"target"`
	AttackerHeight   int          `json:"attackerHeight"`
	TargetHeight     int          `json:"targetHeight"`
	AttackerCategory los.Category `json:"attackerCategory"`
	TargetCategory   los.Category `json:"targetCategory"`
	Units            []string     `json:"units"`
}

type resultRes struct {
	Possible  bool           `json:"possible"`
	Total     int            `json:"total"`
	Reason    string         `json:"reason,omitempty"`
	Modifiers []los.Modifier `json:"modifiers"`
	Text      string         `json:"text"`
}

type rulerRes struct {
	Range   int       `json:"range"`
	Forward resultRes `json:"forward"`
	Reverse resultRes `json:"reverse"`
	Text    string    `json:"text"`
}

func toResultRes(r los.Result) resultRes {
	out := resultRes{Modifiers: r.Modifiers(), Text: report.Format(r)}
	if out.Modifiers == nil {
		out.Modifiers = []los.Modifier{}
	}
	switch v := r.(type) {
	case los.Computed:
		out.Possible = true
		out.Total = v.Total
	case los.Impossible:
		out.Reason = v.Reason
	}
	return out
}

func toRulerRes(rep report.RulerReport) rulerRes {
	return rulerRes{
		Range:   rep.Range,
		Forward: toResultRes(rep.ToHit),
		Reverse: toResultRes(rep.Back),
		Text:    rep.String(),
	}
}

// errBadRequest marks request errors that are the client's fault but not
// geometry errors (malformed coordinates).
var errBadRequest = errors.New("bad request")

// geometry turns a request into a Geometry on a private copy of the board.
func (s *Server) geometry(req shotReq) (los.Geometry, error) {
	from, err := hexgrid.ParseCoord(req.Attacker)
	if err != nil {
		return los.Geometry{}, errors.Join(errBadRequest, err)
	}
	to, err := hexgrid.ParseCoord(req.Target)
	if err != nil {
		return los.Geometry{}, errors.Join(errBadRequest, err)
	}

	board := s.board
	if len(req.Units) > 0 {
		board = s.board.Snapshot()
		for _, u := range req.Units {
			c, err := hexgrid.ParseCoord(u)
			if err != nil {
				return los.Geometry{}, errors.Join(errBadRequest, err)
			}
			if err := board.Place(c, u); err != nil {
				return los.Geometry{}, errors.Join(errBadRequest, err)
			}
		}
	}
	return los.Geometry{
		Attacker:         from,
		Target:           to,
		AttackerHeight:   req.AttackerHeight,
		TargetHeight:     req.TargetHeight,
		AttackerCategory: req.AttackerCategory,
		TargetCategory:   req.TargetCategory,
		Board:            board,
	}, nil
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"name":   s.board.Name,
		"width":  s.board.Width,
		"height": s.board.Height,
	})
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	from, err := hexgrid.ParseCoord(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_coordinate", err.Error())
		return
	}
	to, err := hexgrid.ParseCoord(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_coordinate", err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"distance": hexgrid.Distance(from, to)})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req shotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	g, err := s.geometry(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.engine.Evaluate(g)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toResultRes(res))
}

func (s *Server) handleRuler(w http.ResponseWriter, r *http.Request) {
	var req shotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	g, err := s.geometry(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := report.Ruler(s.engine, g)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toRulerRes(rep))
}

// fail maps an error to a status: geometry and request errors are the caller's,
// anything else is ours.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	if status != http.StatusInternalServerError {
		writeError(w, status, code, err.Error())
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", chimw.GetReqID(r.Context())).Msg("evaluate")
	writeError(w, status, code, "")
}

// errorCode is the HTTP status and wire code for an error. The websocket ruler
// uses the same codes.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, los.ErrInvalidGeometry):
		return http.StatusBadRequest, "invalid_geometry"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

type errorRes struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorRes{Error: code, Detail: detail})
}
