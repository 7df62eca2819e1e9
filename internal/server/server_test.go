// ABOUTME: Tests for the HTTP API surface.
// ABOUTME: Covers fail-closed auth, sync, ingest idempotency, nutrition flow.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/report"
	"github.com/harperreed/hcbridge/internal/storage"
	"github.com/harperreed/hcbridge/internal/summary"
	"github.com/harperreed/hcbridge/internal/syncer"
)

const testKey = "test-key"

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := nutrition.NewService(db, catalog.Default(), time.UTC)
	engine := summary.NewEngine(db, time.UTC, 1680)
	return New(Options{
		Store:     db,
		Syncer:    syncer.New(db),
		Engine:    engine,
		Nutrition: svc,
		Ingestor:  ingest.New(db, svc),
		Reporter:  report.NewReporter(engine, svc, time.UTC),
		APIKey:    apiKey,
		Logger:    log.New(io.Discard, "", 0),
	})
}

func do(t *testing.T, srv *Server, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAuthFailsClosedWithoutConfiguredKey(t *testing.T) {
	srv := newTestServer(t, "")
	rec := do(t, srv, http.MethodGet, "/api/status", "any-key", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when no key configured", rec.Code)
	}
}

func TestAuthRejectsWrongKey(t *testing.T) {
	srv := newTestServer(t, testKey)
	if rec := do(t, srv, http.MethodGet, "/api/status", "wrong", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/status", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", rec.Code)
	}
}

func TestStatusAndSyncRoundTrip(t *testing.T) {
	srv := newTestServer(t, testKey)

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	batch := map[string]any{
		"deviceId":   "pixel-9",
		"syncId":     "s-1",
		"syncedAt":   now.Format(time.RFC3339),
		"rangeStart": now.Add(-24 * time.Hour).Format(time.RFC3339),
		"rangeEnd":   now.Format(time.RFC3339),
		"records": []map[string]any{
			{"type": "StepsRecord", "recordId": "r1", "source": "watch",
				"startTime": start.Format(time.RFC3339), "payload": map[string]any{"count": 100}},
			{"recordId": "r2"}, // no type, skipped
		},
	}
	rec := do(t, srv, http.MethodPost, "/api/sync", testKey, batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Accepted      bool `json:"accepted"`
		UpsertedCount int  `json:"upsertedCount"`
		SkippedCount  int  `json:"skippedCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Accepted || res.UpsertedCount != 1 || res.SkippedCount != 1 {
		t.Fatalf("sync result = %+v", res)
	}

	rec = do(t, srv, http.MethodGet, "/api/status", testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st["totalRecords"] != float64(1) || st["lastSyncId"] != "s-1" {
		t.Fatalf("status body = %v", st)
	}
}

func TestSyncRejectsMissingDeviceID(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodPost, "/api/sync", testKey, map[string]any{"syncId": "s"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIngestDuplicateSecondCall(t *testing.T) {
	srv := newTestServer(t, testKey)
	payload := map[string]any{
		"event_id":   "evt-1",
		"local_date": "2025-06-01",
		"items":      []map[string]any{{"alias": "protein", "count": 1}},
	}
	rec := do(t, srv, http.MethodPost, "/api/ingest", testKey, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d: %s", rec.Code, rec.Body.String())
	}
	var first struct {
		Ingested  int `json:"ingested"`
		Duplicate int `json:"duplicate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Ingested != 1 || first.Duplicate != 0 {
		t.Fatalf("first ingest = %+v", first)
	}

	rec = do(t, srv, http.MethodPost, "/api/ingest", testKey, payload)
	var second struct {
		Ingested  int `json:"ingested"`
		Duplicate int `json:"duplicate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Ingested != 0 || second.Duplicate != 1 {
		t.Fatalf("second ingest = %+v", second)
	}
}

func TestNutritionLogDayDelete(t *testing.T) {
	srv := newTestServer(t, testKey)
	at := "2025-06-01T12:00:00Z"
	rec := do(t, srv, http.MethodPost, "/api/nutrition/log", testKey, map[string]any{
		"alias": "protein", "count": 2, "consumed_at": at,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("log status = %d: %s", rec.Code, rec.Body.String())
	}
	var ev struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, srv, http.MethodGet, "/api/nutrition/day?date=2025-06-01", testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("day status = %d", rec.Code)
	}
	var day struct {
		Events []json.RawMessage `json:"events"`
		Totals struct {
			Kcal *float64 `json:"kcal"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode day: %v", err)
	}
	if len(day.Events) != 1 || day.Totals.Kcal == nil || *day.Totals.Kcal != 214 {
		t.Fatalf("day = %s", rec.Body.String())
	}

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/nutrition/event/%d", ev.ID), testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/nutrition/event/%d", ev.ID), testKey, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestNutritionLogUnknownAlias(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodPost, "/api/nutrition/log", testKey, map[string]any{"alias": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIntakeValidation(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodPost, "/api/intake", testKey, map[string]any{"day": "2025-06-01", "kcal": 1900})
	if rec.Code != http.StatusOK {
		t.Fatalf("intake status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv, http.MethodPost, "/api/intake", testKey, map[string]any{"day": "June 1", "kcal": 1900})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad day status = %d, want 400", rec.Code)
	}
	rec = do(t, srv, http.MethodPost, "/api/intake", testKey, map[string]any{"day": "2025-06-01", "kcal": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero kcal status = %d, want 400", rec.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodGet, "/api/profile", testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty profile status = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPut, "/api/profile", testKey, map[string]any{
		"name": "Test", "goal_weight_kg": 72.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put profile status = %d: %s", rec.Code, rec.Body.String())
	}
	var p struct {
		Name         *string  `json:"name"`
		GoalWeightKg *float64 `json:"goal_weight_kg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name == nil || *p.Name != "Test" || p.GoalWeightKg == nil || *p.GoalWeightKg != 72 {
		t.Fatalf("profile = %s", rec.Body.String())
	}
}

func TestReportsLifecycle(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodPost, "/api/reports", testKey, map[string]any{
		"report_date": "2025-06-01", "report_type": "daily", "content": "all good",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}
	var saved struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, srv, http.MethodPost, "/api/reports", testKey, map[string]any{
		"report_date": "2025-06-01", "report_type": "hourly", "content": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad type status = %d, want 400", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/api/reports/%d", saved.ID), testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/reports/%d", saved.ID), testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/api/reports/%d", saved.ID), testKey, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t, testKey)
	rec := do(t, srv, http.MethodGet, "/api/summary", testKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var sum struct {
		TotalRecords int `json:"totalRecords"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
