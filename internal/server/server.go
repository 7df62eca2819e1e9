// ABOUTME: HTTP API surface of the bridge.
// ABOUTME: Shared-key auth that fails closed, JSON in, JSON out.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/report"
	"github.com/harperreed/hcbridge/internal/storage"
	"github.com/harperreed/hcbridge/internal/summary"
	"github.com/harperreed/hcbridge/internal/syncer"
)

// Options wires a Server to the core services.
type Options struct {
	Store     *storage.DB
	Syncer    *syncer.Syncer
	Engine    *summary.Engine
	Nutrition *nutrition.Service
	Ingestor  *ingest.Ingestor
	Reporter  *report.Reporter

	// APIKey is the shared key devices must present in X-Api-Key. Empty
	// means no key is configured and every request is refused.
	APIKey string

	// GoalWeightKg from config, used for the public summary when the
	// profile has no goal set.
	GoalWeightKg *float64

	Logger *log.Logger
}

// Server is the HTTP handler for the bridge API.
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// New builds the server and registers all routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/sync", s.handleSync)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/summary/public", s.handlePublicSummary)
	s.mux.HandleFunc("GET /api/report/yesterday", s.handleYesterdayReport)
	s.mux.HandleFunc("POST /api/ingest", s.handleIngest)
	s.mux.HandleFunc("POST /api/intake", s.handleIntake)
	s.mux.HandleFunc("GET /api/nutrition/day", s.handleNutritionDay)
	s.mux.HandleFunc("POST /api/nutrition/log", s.handleNutritionLog)
	s.mux.HandleFunc("DELETE /api/nutrition/event/{id}", s.handleNutritionDelete)
	s.mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /api/export.json", s.handleExportJSON)
	s.mux.HandleFunc("GET /api/export.yaml", s.handleExportYAML)
	s.mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	s.mux.HandleFunc("PUT /api/profile", s.handlePutProfile)
	s.mux.HandleFunc("GET /api/reports", s.handleListReports)
	s.mux.HandleFunc("POST /api/reports", s.handleSaveReport)
	s.mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	s.mux.HandleFunc("DELETE /api/reports/{id}", s.handleDeleteReport)
}

// ServeHTTP authenticates, logs, and dispatches.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.authenticate(w, r) {
		s.opts.Logger.Printf("%s %s -> unauthorized (%s)", r.Method, r.URL.Path, time.Since(start))
		return
	}
	s.mux.ServeHTTP(w, r)
	s.opts.Logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
}

// authenticate enforces the shared API key. With no key configured the
// server refuses everything rather than falling open.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.APIKey == "" {
		writeError(w, http.StatusInternalServerError, "api key not configured")
		return false
	}
	if r.Header.Get("X-Api-Key") != s.opts.APIKey {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return false
	}
	return true
}

// ListenAndServe runs the API on the given port until the listener fails.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.opts.Logger.Printf("hcbridge API listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.opts.Logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return models.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}
