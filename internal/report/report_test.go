// ABOUTME: Tests for the daily text report and the shareable public payload.
// ABOUTME: Seeds records directly and pins the reporter clock.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/storage"
	"github.com/harperreed/hcbridge/internal/summary"
)

func setupReporter(t *testing.T, today string) (*Reporter, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := nutrition.NewService(db, catalog.Default(), time.UTC)
	engine := summary.NewEngine(db, time.UTC, 1680)
	r := NewReporter(engine, svc, time.UTC)

	d, err := time.ParseInLocation("2006-01-02", today, time.UTC)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	noon := d.Add(12 * time.Hour)
	r.now = func() time.Time { return noon }
	return r, db
}

var keySeq int

func putRecord(t *testing.T, db *storage.DB, recordType, source, payload string, at time.Time) {
	t.Helper()
	keySeq++
	err := db.UpsertRecord(&models.HealthRecord{
		RecordKey:   fmt.Sprintf("key-%d", keySeq),
		DeviceID:    "dev",
		Type:        recordType,
		Source:      &source,
		StartTime:   &at,
		PayloadJSON: payload,
		IngestedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("put record: %v", err)
	}
}

func TestForDayRendersNumbersAndMeals(t *testing.T) {
	r, db := setupReporter(t, "2025-06-02")
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	putRecord(t, db, models.TypeSteps, "watch", `{"count":8200}`, day)
	putRecord(t, db, models.TypeWeight, "scale", `{"weight":{"inKilograms":80.46}}`, day)

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	if _, err := r.nutrition.LogAlias("protein", &at, 2, nil); err != nil {
		t.Fatalf("log meal: %v", err)
	}

	text, err := r.Yesterday()
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	for _, want := range []string{
		"Health report for 2025-06-01",
		"Steps:",
		"8200",
		"80.5 kg",
		"Nutrition (1 item(s)):",
		"12:30",
		"x2",
		"(214 kcal)",
		"Total: 214 kcal, 40g protein",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	// Absent metrics render a dash, not a zero.
	if !strings.Contains(text, "Intake:") {
		t.Errorf("report missing intake line:\n%s", text)
	}
}

func TestForDayWithoutData(t *testing.T) {
	r, _ := setupReporter(t, "2025-06-02")
	text, err := r.ForDay("2025-06-01")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(text, "Steps:") || !strings.Contains(text, "-") {
		t.Errorf("empty report should show dashes:\n%s", text)
	}
	if strings.Contains(text, "Nutrition") {
		t.Errorf("no meals logged but nutrition section present:\n%s", text)
	}
}

func TestPublicSummaryUsesRelativeLabels(t *testing.T) {
	r, db := setupReporter(t, "2025-06-14")
	day := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)
	putRecord(t, db, models.TypeSteps, "watch", `{"count":10432}`, day)
	putRecord(t, db, models.TypeWeight, "scale", `{"weight":{"inKilograms":80.46}}`, day)

	goal := 72.34
	pub, err := r.PublicSummary(&goal)
	if err != nil {
		t.Fatalf("public summary: %v", err)
	}

	if pub.SchemaVersion != 1 {
		t.Errorf("schema version = %d, want 1", pub.SchemaVersion)
	}
	if len(pub.Days) != 14 {
		t.Fatalf("days = %d, want 14", len(pub.Days))
	}
	if pub.Days[0].Label != "D-13" || pub.Days[13].Label != "D-0" {
		t.Errorf("labels = %s .. %s, want D-13 .. D-0", pub.Days[0].Label, pub.Days[13].Label)
	}

	// June 13 is D-1: second to last entry.
	d1 := pub.Days[12]
	if d1.Steps == nil || *d1.Steps != 10432 {
		t.Errorf("D-1 steps = %v, want 10432", d1.Steps)
	}
	if d1.WeightKg == nil || *d1.WeightKg != 80.5 {
		t.Errorf("D-1 weight = %v, want rounded 80.5", d1.WeightKg)
	}
	if pub.GoalWeightKg == nil || *pub.GoalWeightKg != 72.3 {
		t.Errorf("goal = %v, want rounded 72.3", pub.GoalWeightKg)
	}
}

func TestPublicSummaryCarriesNoAbsoluteDates(t *testing.T) {
	r, db := setupReporter(t, "2025-06-14")
	putRecord(t, db, models.TypeSteps, "watch", `{"count":5000}`,
		time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC))

	pub, err := r.PublicSummary(nil)
	if err != nil {
		t.Fatalf("public summary: %v", err)
	}
	for _, d := range pub.Days {
		if strings.Contains(d.Label, "2025") {
			t.Errorf("label leaks a date: %s", d.Label)
		}
	}
	if pub.GoalWeightKg != nil {
		t.Errorf("goal = %v, want nil when unset", pub.GoalWeightKg)
	}
	if pub.Insights == nil {
		t.Error("insights should be an empty slice, not nil")
	}
}
