// Package api serves the résumé analysis operations over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-matcher/internal/export"
	"github.com/fmuoria/resume-matcher/internal/ingestion"
	"github.com/fmuoria/resume-matcher/internal/logger"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/scoring"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Analyzer is the set of operations the server exposes
type Analyzer interface {
	ExtractFields(ctx context.Context, text string) models.ExtractedFields
	ExtractEducation(ctx context.Context, text string) []string
	ExtractSkills(ctx context.Context, text string) []string
	Compare(jobDescription string, skills []string) float64
	BuildKnowledgeGraph(ctx context.Context, jobDescription string, skills []string) models.KnowledgeGraph
	Analyze(ctx context.Context, resume, jobDescription string) (models.AnalysisResult, error)
}

// Server handles HTTP requests
type Server struct {
	analyzer     Analyzer
	maxBodyBytes int64
}

// NewServer creates a new API server. A non-positive maxBodyBytes selects
// ingestion.MaxDocumentBytes.
func NewServer(analyzer Analyzer, maxBodyBytes int64) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = ingestion.MaxDocumentBytes
	}
	return &Server{
		analyzer:     analyzer,
		maxBodyBytes: maxBodyBytes,
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /compare", s.handleCompare)
	mux.HandleFunc("POST /graph", s.handleGraph)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze.xlsx", s.handleAnalyzeExcel)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"service": "Resume Matcher",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /extract":      "Extract name, contact details, education and skills from a resume",
			"POST /compare":      "Score a skill list against a job description",
			"POST /graph":        "Build the skill knowledge graph for a job description",
			"POST /analyze":      "Run extraction, scoring and graph building in one call",
			"POST /analyze.xlsx": "Same as /analyze, returned as an Excel report",
			"GET /health":        "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if !s.decode(w, r, &req) {
		return
	}

	resume, ok := s.cleanRequired(w, r, "resume", req.Resume)
	if !ok {
		return
	}

	ctx := r.Context()
	s.respondJSON(w, r, http.StatusOK, models.ExtractResponse{
		Fields:    s.analyzer.ExtractFields(ctx, resume),
		Education: s.analyzer.ExtractEducation(ctx, resume),
		Skills:    s.analyzer.ExtractSkills(ctx, resume),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if !s.decode(w, r, &req) {
		return
	}

	jd, err := ingestion.CleanText(req.JobDescription)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	score := s.analyzer.Compare(jd, req.Skills)
	s.respondJSON(w, r, http.StatusOK, models.CompareResponse{
		Score:        score,
		ScorePercent: scoring.Percent(score),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if !s.decode(w, r, &req) {
		return
	}

	jd, err := ingestion.CleanText(req.JobDescription)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, r, http.StatusOK, s.analyzer.BuildKnowledgeGraph(r.Context(), jd, req.Skills))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, ok := s.analyze(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleAnalyzeExcel(w http.ResponseWriter, r *http.Request) {
	result, ok := s.analyze(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteExcel(result, &buf); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("failed to build Excel report")
		s.respondError(w, r, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.xlsx"`, result.RequestID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// analyze decodes an AnalyzeRequest and runs the full pipeline
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (models.AnalysisResult, bool) {
	var req models.AnalyzeRequest
	if !s.decode(w, r, &req) {
		return models.AnalysisResult{}, false
	}

	resume, ok := s.cleanRequired(w, r, "resume", req.Resume)
	if !ok {
		return models.AnalysisResult{}, false
	}
	jd, err := ingestion.CleanText(req.JobDescription)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return models.AnalysisResult{}, false
	}

	result, err := s.analyzer.Analyze(r.Context(), resume, jd)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("analysis failed")
		s.respondError(w, r, http.StatusServiceUnavailable, "analysis did not complete")
		return models.AnalysisResult{}, false
	}
	return result, true
}

// decode reads a JSON body into dst, answering 400 or 413 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// cleanRequired sanitizes a mandatory text field
func (s *Server) cleanRequired(w http.ResponseWriter, r *http.Request, field, value string) (string, bool) {
	if value == "" {
		s.respondError(w, r, http.StatusBadRequest, field+" is required")
		return "", false
	}
	text, err := ingestion.CleanText(value)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("%s: %v", field, err))
		return "", false
	}
	return text, true
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.respondJSON(w, r, status, map[string]string{
		"error": message,
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware tags each request with an id and logs its outcome
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
