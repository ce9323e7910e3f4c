// Package server exposes the finesse engine over HTTP with JSON bodies.
//
//	GET  /health
//	GET  /optimal?piece=T&column=3&rotation=R
//	POST /grade
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tetris"
	"tetris/finesse"
	"tetris/srs"
)

// Server bundles the router and the engine it serves.
type Server struct {
	r      *chi.Mux
	engine *finesse.Engine
	log    zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *finesse.Engine, logger zerolog.Logger) *Server {
	s := &Server{r: chi.NewRouter(), engine: engine, log: logger}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(s.requestLogger)
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/optimal", s.handleOptimal)
	s.r.Post("/grade", s.handleGrade)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// optimalResponse is the body of GET /optimal.
type optimalResponse struct {
	Target    finesse.Target    `json:"target"`
	MinLength int               `json:"min_length"`
	Sequences []tetris.Sequence `json:"sequences"`
}

func (s *Server) handleOptimal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := parseTarget(q.Get("piece"), q.Get("column"), q.Get("rotation"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	seqs := s.engine.Optimal(target.Piece, target.Column, target.Rotation)
	resp := optimalResponse{Target: target, MinLength: -1, Sequences: seqs}
	if len(seqs) > 0 {
		resp.MinLength = seqs[0].Len()
	} else {
		resp.Sequences = []tetris.Sequence{}
	}
	writeJSON(w, resp)
}

func parseTarget(piece, column, rotation string) (finesse.Target, error) {
	var t finesse.Target
	var err error
	if t.Piece, err = tetris.ParsePiece(piece); err != nil {
		return t, err
	}
	if t.Column, err = strconv.Atoi(column); err != nil {
		return t, errors.New("column must be an integer")
	}
	if rotation == "" {
		rotation = "0"
	}
	if t.Rotation, err = tetris.ParseRotation(rotation); err != nil {
		return t, err
	}
	return t, nil
}

// lockedPiece is where the piece actually locked. A missing piece means the
// target piece.
type lockedPiece struct {
	Piece    tetris.Piece    `json:"piece"`
	Column   int             `json:"column"`
	Rotation tetris.Rotation `json:"rotation"`
}

// gradeRequest is the body of POST /grade. Exactly one of Actions, which
// are already normalized, or Inputs, which are raw events, should be set.
type gradeRequest struct {
	Target  finesse.Target       `json:"target"`
	Locked  lockedPiece          `json:"locked"`
	Actions []tetris.Action      `json:"actions"`
	Inputs  []finesse.InputEvent `json:"inputs"`
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json: "+err.Error())
		return
	}
	if err := req.Target.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Actions != nil && req.Inputs != nil {
		writeError(w, http.StatusBadRequest, "set only one of actions and inputs")
		return
	}

	locked := srs.State{
		Piece:    req.Locked.Piece,
		Rotation: req.Locked.Rotation,
		Col:      req.Locked.Column,
	}
	if locked.Piece == tetris.EmptyPiece {
		locked.Piece = req.Target.Piece
	}

	var v finesse.Verdict
	if req.Inputs != nil {
		v = s.engine.GradeInputs(req.Inputs, locked, req.Target)
	} else {
		v = s.engine.Grade(req.Actions, locked, req.Target)
	}
	writeJSON(w, v)
}
