package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/cache"
	"github.com/MikeSquared-Agency/oars/internal/report"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/store"
)

const (
	maxBodyBytes = 1 << 20
	maxScores    = 200
)

// reportRequest renders Analysis when set, otherwise analyzes the embedded
// transcript first.
type reportRequest struct {
	Analysis *analysis.Result `json:"analysis,omitempty"`
	analysis.Request
}

type replyResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// analyze handles POST /api/v1/analyze
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	res, ok := s.run(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// renderReport handles POST /api/v1/report
func (s *Server) renderReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	res := req.Analysis
	if res == nil {
		var ok bool
		if res, ok = s.run(w, r, req.Request); !ok {
			return
		}
	}
	s.writeHTML(w, res)
}

// cachedReport handles GET /api/v1/report/{id}
func (s *Server) cachedReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report cache not configured")
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.reports.Get(r.Context(), id)
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.Error("report lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "report lookup failed")
		return
	}
	s.writeHTML(w, res)
}

// recentScores handles GET /api/v1/scores
func (s *Server) recentScores(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "score history not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxScores)
	}
	rows, err := s.scores.RecentScores(r.Context(), limit)
	if err != nil {
		s.logger.Error("score history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "score history failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": rows, "count": len(rows)})
}

// reply handles POST /api/v1/reply
func (s *Server) reply(w http.ResponseWriter, r *http.Request) {
	if s.simulator == nil {
		writeError(w, http.StatusServiceUnavailable, "LLM provider not configured")
		return
	}
	var req simulator.ReplyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	text, err := s.simulator.Reply(r.Context(), req)
	if err != nil {
		s.logger.Error("simulated reply failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, replyResponse{Reply: simulator.FallbackReply, Error: "reply failed"})
		return
	}
	writeJSON(w, http.StatusOK, replyResponse{Reply: text})
}

// run analyzes req and writes the error response itself when it fails.
func (s *Server) run(w http.ResponseWriter, r *http.Request, req analysis.Request) (*analysis.Result, bool) {
	res, err := s.analysis.Analyze(r.Context(), req)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, analysis.ErrEmptyTranscript):
		writeError(w, http.StatusBadRequest, "empty transcript")
	case errors.Is(err, analysis.ErrUnsupportedLanguage), errors.Is(err, analysis.ErrUnknownStrategy):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
	return nil, false
}

func (s *Server) writeHTML(w http.ResponseWriter, res *analysis.Result) {
	page, err := report.HTML(res)
	if err != nil {
		s.logger.Error("render report failed", "id", res.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func isNotFound(err error) bool {
	return errors.Is(err, cache.ErrNotFound) || errors.Is(err, store.ErrNotFound)
}

type chainedReports []ReportStore

// ChainReports looks an id up in each store in turn and returns the first
// hit. When every store misses, a lookup failure is reported ahead of a
// plain miss. It returns nil when no store is given.
func ChainReports(stores ...ReportStore) ReportStore {
	var c chainedReports
	for _, s := range stores {
		if s != nil {
			c = append(c, s)
		}
	}
	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0]
	}
	return c
}

func (c chainedReports) Get(ctx context.Context, id string) (*analysis.Result, error) {
	var firstErr error
	for _, s := range c {
		res, err := s.Get(ctx, id)
		if err == nil {
			return res, nil
		}
		// a failing store must not hide a hit further down the chain
		if firstErr == nil || isNotFound(firstErr) && !isNotFound(err) {
			firstErr = err
		}
	}
	return nil, firstErr
}
