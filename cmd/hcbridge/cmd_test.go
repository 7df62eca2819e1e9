// ABOUTME: Tests for CLI helper functions.
// ABOUTME: Covers parseTime and the legacy JSONL replay path.
package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/storage"
)

func setupCLI(t *testing.T) {
	t.Helper()
	var err error
	db, err = storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	nutritionSvc = nutrition.NewService(db, catalog.Default(), time.UTC)
	ingestor = ingest.New(db, nutritionSvc)
}

func TestParseTime(t *testing.T) {
	setupCLI(t)
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "RFC3339", input: "2025-06-01T08:30:00Z", wantErr: false},
		{name: "date and time with space", input: "2025-06-01 08:30", wantErr: false},
		{name: "invalid format", input: "01-06-2025", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestIngestLegacyFileReplayIsIdempotent(t *testing.T) {
	setupCLI(t)

	path := filepath.Join(t.TempDir(), "log.jsonl")
	content := `{"local_date":"2025-06-01","items":[{"alias":"protein"}]}
{"local_date":"2025-06-01","items":[{"alias":"fish_oil","count":2}]}

not json
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}

	if err := ingestLegacyFile(path); err != nil {
		t.Fatalf("legacy replay: %v", err)
	}
	events, err := nutritionSvc.DayEvents("2025-06-01")
	if err != nil {
		t.Fatalf("day events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events after replay = %d, want 2", len(events))
	}

	// Replaying the same file must not duplicate anything.
	if err := ingestLegacyFile(path); err != nil {
		t.Fatalf("second replay: %v", err)
	}
	events, err = nutritionSvc.DayEvents("2025-06-01")
	if err != nil {
		t.Fatalf("day events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events after second replay = %d, want 2", len(events))
	}
}
