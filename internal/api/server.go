// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/semmatch/internal/common"
	"github.com/nicodishanthj/semmatch/internal/matcher"
	"github.com/nicodishanthj/semmatch/internal/record"
)

// Server exposes the matching engine over HTTP.
type Server struct {
	router chi.Router
	engine *matcher.Engine
}

func NewServer(engine *matcher.Engine) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("api: engine required: %w", common.ErrConfiguration)
	}
	s := &Server{
		router: chi.NewRouter(),
		engine: engine,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/api/records", s.handleAddRecord)
	s.router.Post("/api/records/batch", s.handleAddRecords)
	s.router.Post("/api/match", s.handleMatch)
	s.router.Get("/api/explain", s.handleExplain)
	s.router.Get("/api/logs", s.handleLogs)
}

type documentPayload struct {
	ID       string `json:"id"`
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Chunks   int    `json:"chunks"`
}

func documentPayloads(docs []matcher.Document) []documentPayload {
	out := make([]documentPayload, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentPayload{
			ID:       doc.ID,
			RecordID: doc.RecordID,
			Field:    doc.Field,
			Chunks:   doc.Chunks,
		})
	}
	return out
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	var rec record.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode record: %w", err))
		return
	}
	docs, err := s.engine.AddRecord(r.Context(), rec)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": documentPayloads(docs)})
}

func (s *Server) handleAddRecords(w http.ResponseWriter, r *http.Request) {
	var records []record.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode records: %w", err))
		return
	}
	docs, err := s.engine.AddRecords(r.Context(), records)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": documentPayloads(docs)})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var query record.Record
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode query: %w", err))
		return
	}
	match, err := s.engine.Find(r.Context(), query)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	payload := map[string]interface{}{"matched": match != nil}
	if match != nil {
		payload["record"] = match
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	explanation, err := s.engine.Explain(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := common.LogEntries()
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit >= 0 && limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrEmptyInput), errors.Is(err, common.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNoResolution):
		return http.StatusConflict
	case errors.Is(err, common.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
