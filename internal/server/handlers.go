// ABOUTME: HTTP handlers for the bridge API endpoints.
// ABOUTME: Thin adapters; all behavior lives in the core packages.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/nutrition"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, err := s.opts.Store.CountRecords()
	if err != nil {
		s.fail(w, err)
		return
	}
	out := map[string]any{
		"ok":           true,
		"dbPath":       s.opts.Store.Path(),
		"totalRecords": total,
	}
	if run, err := s.opts.Store.LastSyncRun(); err == nil {
		out["lastSyncId"] = run.SyncID
		out["lastReceivedAt"] = run.ReceivedAt.UTC().Format(time.RFC3339)
	} else if !errors.Is(err, models.ErrNotFound) {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var batch models.SyncBatch
	if err := decodeBody(r, &batch); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.opts.Syncer.Apply(&batch)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.opts.Engine.Build()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handlePublicSummary(w http.ResponseWriter, r *http.Request) {
	goal := s.opts.GoalWeightKg
	if p, err := s.opts.Store.GetProfile(); err == nil && p.GoalWeightKg != nil {
		goal = p.GoalWeightKg
	}
	pub, err := s.opts.Reporter.PublicSummary(goal)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (s *Server) handleYesterdayReport(w http.ResponseWriter, r *http.Request) {
	text, err := s.opts.Reporter.Yesterday()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report": text})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var p ingest.Payload
	if err := decodeBody(r, &p); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.opts.Ingestor.Ingest(&p)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type intakeRequest struct {
	Day    string  `json:"day"`
	Kcal   float64 `json:"kcal"`
	Source string  `json:"source,omitempty"`
	Note   *string `json:"note,omitempty"`
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Day); err != nil {
		s.fail(w, models.Invalid("day", "must be YYYY-MM-DD"))
		return
	}
	if req.Kcal <= 0 {
		s.fail(w, models.Invalid("kcal", "must be > 0"))
		return
	}
	source := req.Source
	if source == "" {
		source = ingest.DefaultSource
	}
	in := &models.IntakeDay{Day: req.Day, IntakeKcal: req.Kcal, Source: source, Note: req.Note}
	if err := s.opts.Store.UpsertIntake(in); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "day": req.Day})
}

func (s *Server) handleNutritionDay(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = s.opts.Nutrition.LocalDate(time.Now())
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		s.fail(w, models.Invalid("date", "must be YYYY-MM-DD"))
		return
	}
	events, err := s.opts.Nutrition.DayEvents(day)
	if err != nil {
		s.fail(w, err)
		return
	}
	totals, err := s.opts.Nutrition.DayTotals(day)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": day, "events": events, "totals": totals})
}

type logRequest struct {
	Alias      *string            `json:"alias,omitempty"`
	Label      string             `json:"label,omitempty"`
	ConsumedAt *time.Time         `json:"consumed_at,omitempty"`
	Count      float64            `json:"count,omitempty"`
	Unit       *string            `json:"unit,omitempty"`
	Kcal       *float64           `json:"kcal,omitempty"`
	ProteinG   *float64           `json:"protein_g,omitempty"`
	FatG       *float64           `json:"fat_g,omitempty"`
	CarbsG     *float64           `json:"carbs_g,omitempty"`
	Micros     map[string]float64 `json:"micros,omitempty"`
	Note       *string            `json:"note,omitempty"`
}

func (s *Server) handleNutritionLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	var ev *models.NutritionEvent
	var err error
	if req.Alias != nil && *req.Alias != "" {
		ev, err = s.opts.Nutrition.LogAlias(*req.Alias, req.ConsumedAt, count, req.Note)
	} else {
		ev, err = s.opts.Nutrition.LogEvent(nutrition.EventInput{
			ConsumedAt: req.ConsumedAt,
			Label:      req.Label,
			Count:      count,
			Unit:       req.Unit,
			Kcal:       req.Kcal,
			ProteinG:   req.ProteinG,
			FatG:       req.FatG,
			CarbsG:     req.CarbsG,
			Micros:     req.Micros,
			Note:       req.Note,
		})
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleNutritionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, models.Invalid("id", "must be an integer"))
		return
	}
	if err := s.opts.Nutrition.DeleteEvent(id); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": id})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.opts.Store.ExportRecordsCSV(r.URL.Query().Get("type"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="health_records.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	sum, err := s.opts.Engine.Build()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="summary.json"`)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleExportYAML(w http.ResponseWriter, r *http.Request) {
	sum, err := s.opts.Engine.Build()
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := yaml.Marshal(sum)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.yaml"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Store.GetProfile()
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusOK, &models.Profile{})
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var update models.Profile
	if err := decodeBody(r, &update); err != nil {
		s.fail(w, err)
		return
	}
	p, err := s.opts.Store.UpsertProfile(&update)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.fail(w, models.Invalid("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	list, err := s.opts.Store.ListReports(r.URL.Query().Get("type"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	var req models.SavedReport
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	saved, err := s.opts.Store.SaveReport(&req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, models.Invalid("id", "must be an integer"))
		return
	}
	rep, err := s.opts.Store.GetReport(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, models.Invalid("id", "must be an integer"))
		return
	}
	if err := s.opts.Store.DeleteReport(id); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": id})
}
