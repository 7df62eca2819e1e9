// ABOUTME: Tests for the SQLite stores.
// ABOUTME: Covers record merge-upsert, nutrition dual-write, ledger, intake.
package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func fPtr(v float64) *float64 { return &v }

func tPtr(t time.Time) *time.Time { return &t }

func TestUpsertRecordMergesOnKey(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rec := &models.HealthRecord{
		RecordKey:   "k1",
		DeviceID:    "dev-1",
		Type:        models.TypeSteps,
		Source:      strPtr("watch"),
		StartTime:   &start,
		PayloadJSON: `{"count":100}`,
		IngestedAt:  time.Now().UTC(),
	}
	if err := db.UpsertRecord(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Same key, new payload: payload merges, identity stays.
	update := *rec
	update.DeviceID = "dev-2"
	update.PayloadJSON = `{"count":250}`
	lm := start.Add(time.Hour)
	update.LastModifiedTime = &lm
	if err := db.UpsertRecord(&update); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := db.GetRecord("k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PayloadJSON != `{"count":250}` {
		t.Errorf("payload = %s, want merged", got.PayloadJSON)
	}
	if got.DeviceID != "dev-1" {
		t.Errorf("device = %s, want original binding preserved", got.DeviceID)
	}
	if got.LastModifiedTime == nil || !got.LastModifiedTime.Equal(lm) {
		t.Errorf("last modified = %v, want %v", got.LastModifiedTime, lm)
	}

	n, err := db.CountRecords()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestUpsertRecordRequiresType(t *testing.T) {
	db := setupTestDB(t)
	err := db.UpsertRecord(&models.HealthRecord{RecordKey: "k", DeviceID: "d", IngestedAt: time.Now()})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetRecord("missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNutritionDualWriteAndDelete(t *testing.T) {
	db := setupTestDB(t)
	unit := "pcs"
	ev := &models.NutritionEvent{
		ConsumedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LocalDate:  "2025-06-01",
		Label:      "protein drink",
		Count:      2,
		Unit:       &unit,
		Kcal:       fPtr(107),
		ProteinG:   fPtr(20),
		Micros:     map[string]float64{"calcium_mg": 180},
	}
	id, err := db.InsertNutritionEvent(ev)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 || ev.ID != id {
		t.Fatalf("id = %d / %d", id, ev.ID)
	}

	// Totals come from the exploded rows: per-unit values times count.
	totals, err := db.DayTotals("2025-06-01")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Kcal == nil || *totals.Kcal != 214 {
		t.Errorf("kcal total = %v, want 214", totals.Kcal)
	}
	if totals.ProteinG == nil || *totals.ProteinG != 40 {
		t.Errorf("protein total = %v, want 40", totals.ProteinG)
	}
	if totals.Micros["calcium_mg"] != 360 {
		t.Errorf("calcium total = %v, want 360", totals.Micros["calcium_mg"])
	}

	if err := db.DeleteNutritionEvent(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	totals, err = db.DayTotals("2025-06-01")
	if err != nil {
		t.Fatalf("totals after delete: %v", err)
	}
	if totals.Kcal != nil {
		t.Errorf("kcal after delete = %v, want nil", totals.Kcal)
	}

	if err := db.DeleteNutritionEvent(id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestDayEventsOrderedByTime(t *testing.T) {
	db := setupTestDB(t)
	for _, h := range []int{14, 8, 20} {
		ev := &models.NutritionEvent{
			ConsumedAt: time.Date(2025, 6, 1, h, 0, 0, 0, time.UTC),
			LocalDate:  "2025-06-01",
			Label:      "meal",
			Count:      1,
		}
		if _, err := db.InsertNutritionEvent(ev); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	events, err := db.DayEvents("2025-06-01")
	if err != nil {
		t.Fatalf("day events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].ConsumedAt.Before(events[i-1].ConsumedAt) {
			t.Errorf("events out of order at %d", i)
		}
	}
}

func TestIngestLedger(t *testing.T) {
	db := setupTestDB(t)
	has, err := db.HasIngestEvent("evt-1")
	if err != nil || has {
		t.Fatalf("fresh ledger has=%v err=%v", has, err)
	}

	ev := &models.IngestedEvent{EventID: "evt-1", IngestedAt: time.Now().UTC(), PayloadHash: "abc"}
	inserted, err := db.InsertIngestEvent(ev)
	if err != nil || !inserted {
		t.Fatalf("first insert inserted=%v err=%v", inserted, err)
	}

	inserted, err = db.InsertIngestEvent(ev)
	if err != nil {
		t.Fatalf("duplicate insert err=%v", err)
	}
	if inserted {
		t.Error("duplicate insert reported inserted=true")
	}

	has, err = db.HasIngestEvent("evt-1")
	if err != nil || !has {
		t.Fatalf("after insert has=%v err=%v", has, err)
	}
}

func TestIntakeUpsertLastWriteWins(t *testing.T) {
	db := setupTestDB(t)
	if err := db.UpsertIntake(&models.IntakeDay{Day: "2025-06-01", IntakeKcal: 1800, Source: "automation"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.UpsertIntake(&models.IntakeDay{Day: "2025-06-01", IntakeKcal: 2100, Source: "manual"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetIntake("2025-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IntakeKcal != 2100 || got.Source != "manual" {
		t.Errorf("intake = %+v", got)
	}

	all, err := db.AllIntake()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if all["2025-06-01"] != 2100 {
		t.Errorf("all intake = %v", all)
	}

	if _, err := db.GetIntake("2025-06-02"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing day = %v, want ErrNotFound", err)
	}
}

func TestSyncRunLifecycle(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	run := &models.SyncRun{
		SyncID: "s1", DeviceID: "dev", SyncedAt: now,
		RangeStart: now.Add(-time.Hour), RangeEnd: now,
		ReceivedAt: now, RecordCount: 5,
	}
	if err := db.BeginSyncRun(run); err != nil {
		t.Fatalf("begin: %v", err)
	}
	// Idempotent re-begin.
	if err := db.BeginSyncRun(run); err != nil {
		t.Fatalf("re-begin: %v", err)
	}
	if err := db.FinishSyncRun("s1", 4, 1); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := db.LastSyncRun()
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if got.SyncID != "s1" || got.UpsertedCount != 4 || got.SkippedCount != 1 {
		t.Errorf("run = %+v", got)
	}
}

func TestProfilePartialUpsert(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetProfile(); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("fresh profile = %v, want ErrNotFound", err)
	}

	p, err := db.UpsertProfile(&models.Profile{Name: strPtr("H"), HeightCm: fPtr(180)})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.Name == nil || *p.Name != "H" {
		t.Fatalf("profile = %+v", p)
	}

	// Second partial update must not clear earlier fields.
	p, err = db.UpsertProfile(&models.Profile{GoalWeightKg: fPtr(72)})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p.Name == nil || *p.Name != "H" || p.HeightCm == nil || *p.HeightCm != 180 {
		t.Errorf("earlier fields lost: %+v", p)
	}
	if p.GoalWeightKg == nil || *p.GoalWeightKg != 72 {
		t.Errorf("goal not set: %+v", p)
	}
}

func TestReportsPreviewAndDelete(t *testing.T) {
	db := setupTestDB(t)
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	saved, err := db.SaveReport(&models.SavedReport{
		ReportDate: "2025-06-01", ReportType: "daily", Content: string(long),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := db.SaveReport(&models.SavedReport{ReportDate: "2025-06-01", ReportType: "hourly", Content: "x"}); !models.IsValidation(err) {
		t.Fatalf("bad type = %v, want validation error", err)
	}

	list, err := db.ListReports("", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Preview) != 200 {
		t.Fatalf("list = %d entries, preview %d chars", len(list), len(list[0].Preview))
	}

	if err := db.DeleteReport(saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.DeleteReport(saved.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestExportRecordsCSV(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rec := &models.HealthRecord{
		RecordKey: "k1", DeviceID: "dev", Type: models.TypeSteps,
		StartTime: tPtr(start), PayloadJSON: `{"count":1}`, IngestedAt: time.Now().UTC(),
	}
	if err := db.UpsertRecord(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	data, err := db.ExportRecordsCSV("")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty export")
	}

	filtered, err := db.ExportRecordsCSV(models.TypeWeight)
	if err != nil {
		t.Fatalf("filtered export: %v", err)
	}
	if len(filtered) >= len(data) {
		t.Errorf("filter did not reduce output: %d vs %d", len(filtered), len(data))
	}
}
