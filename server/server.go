// Package server exposes the transpiler over HTTP for the dashboard UI.
// The compile endpoint is called on every edit of the query input, so it
// must always answer with a best-effort result rather than an error.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/darkermemo/searchpipe/pkg/spl"
	"github.com/hashicorp/go-hclog"
)

type Server struct {
	log hclog.Logger
	mux *http.ServeMux
}

func New(log hclog.Logger) *Server {
	s := &Server{
		log: log.Named("api"),
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("/healthz", withSecurityHeaders(s.handleHealth))
	s.mux.HandleFunc("/api/v1/transpile", withSecurityHeaders(s.handleTranspile))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next(w, r)
	}
}

type transpileRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTranspile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	var req transpileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Error("Failed to decode request", "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	// An empty query is a valid pipeline, so no input is rejected here.
	// Malformed pipelines come back with diagnostics, not an error status.
	result := spl.Transpile(req.Query)
	s.log.Debug("Transpiled query",
		"query", req.Query,
		"stages", len(result.Stages),
		"valid", result.IsValid)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}
