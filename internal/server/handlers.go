// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/meshintel/autoresearcher/internal/plan"
	"github.com/meshintel/autoresearcher/internal/retrieve"
	"github.com/meshintel/autoresearcher/internal/store"
)

const minGoalLength = 8

// goalRequest is the body of every goal-driven POST endpoint.
type goalRequest struct {
	Goal       string `json:"goal"`
	MaxResults int    `json:"max_results"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"name":    "AutoResearcher",
		"message": "Hello from the Self-Initiated Research Agent!",
		"next":    `POST /plan with a JSON body: {"goal": "..."}`,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, plan.Make(req.Goal))
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}

	result := s.collector.Collect(r.Context(), req.Goal, req.MaxResults, nil)
	if result.Error != "" {
		s.respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}
	if s.docs == nil {
		s.respondError(w, http.StatusInternalServerError, "document store is not configured")
		return
	}

	result := s.collector.Collect(r.Context(), req.Goal, req.MaxResults, nil)
	if result.Error != "" {
		s.respondError(w, http.StatusInternalServerError, result.Error)
		return
	}

	summary, err := s.docs.Store(r.Context(), result.Documents)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"goal":                req.Goal,
		"documents_collected": len(result.Documents),
		"processing_result":   summary,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		s.respondError(w, http.StatusInternalServerError, "document store is not configured")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	maxResults := 0
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "max_results must be a non-negative integer")
			return
		}
		maxResults = n
	}

	matches, err := s.docs.SearchSimilar(r.Context(), query, maxResults)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		matches = []store.Match{}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": matches,
		"count":   len(matches),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		s.respondError(w, http.StatusInternalServerError, "document store is not configured")
		return
	}

	stats, err := s.docs.Stats(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}

	result := s.collector.Collect(r.Context(), req.Goal, req.MaxResults, nil)
	if result.Error != "" {
		s.respondError(w, http.StatusInternalServerError, result.Error)
		return
	}

	docs := retrieve.Rank(result.Documents, req.Goal, true)

	// Index the collected documents so the subtopic analysis can find them.
	// A store failure degrades the report but does not fail the request.
	if s.docs != nil {
		if _, err := s.docs.Store(r.Context(), docs); err != nil {
			s.logger.Warn("storing documents for report failed", zap.Error(err))
		}
	}

	p := plan.Make(req.Goal)
	markdown := s.reports.Generate(r.Context(), req.Goal, docs, p.Subtopics)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"goal":           req.Goal,
		"report":         markdown,
		"document_count": len(docs),
	})
}

// decodeGoalRequest parses and validates a goal-bearing POST body. On
// failure it writes the error response and returns ok=false.
func (s *Server) decodeGoalRequest(w http.ResponseWriter, r *http.Request) (goalRequest, bool) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if len(req.Goal) < minGoalLength {
		s.respondError(w, http.StatusBadRequest, "goal must be at least 8 characters")
		return req, false
	}
	return req, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
