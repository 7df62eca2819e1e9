// ABOUTME: Tests for the alias catalog.
// ABOUTME: Covers built-in lookups, user-file merging, and override semantics.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDefaultCatalogItems(t *testing.T) {
	cat := Default()

	item, ok := cat.Lookup("protein")
	if !ok {
		t.Fatal("protein alias missing from built-ins")
	}
	if item.Kcal == nil || *item.Kcal != 107 {
		t.Errorf("protein kcal = %v, want 107", item.Kcal)
	}
	if item.ProteinG == nil || *item.ProteinG != 20 {
		t.Errorf("protein grams = %v, want 20", item.ProteinG)
	}

	item, ok = cat.Lookup("fish_oil")
	if !ok {
		t.Fatal("fish_oil alias missing from built-ins")
	}
	if item.Micros["epa_mg"] != 190 || item.Micros["omega3_mg"] != 270 {
		t.Errorf("fish_oil micros = %v", item.Micros)
	}

	if _, ok := cat.Lookup("nope"); ok {
		t.Error("unknown alias resolved")
	}
}

func TestAliasesSorted(t *testing.T) {
	aliases := Default().Aliases()
	if len(aliases) == 0 {
		t.Fatal("no aliases")
	}
	if !sort.StringsAreSorted(aliases) {
		t.Errorf("aliases not sorted: %v", aliases)
	}
}

func TestLoadFileMergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	userFile := `[
		{"alias": "espresso", "label": "Double espresso", "kcal": 5},
		{"alias": "protein", "label": "Different protein drink", "kcal": 150}
	]`
	if err := os.WriteFile(path, []byte(userFile), 0o600); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// New alias added.
	item, ok := cat.Lookup("espresso")
	if !ok || item.Kcal == nil || *item.Kcal != 5 {
		t.Errorf("espresso = %+v ok=%v", item, ok)
	}
	// User entry overrides the built-in.
	item, ok = cat.Lookup("protein")
	if !ok || item.Label != "Different protein drink" {
		t.Errorf("protein override = %+v ok=%v", item, ok)
	}
	// Untouched built-ins survive.
	if _, ok := cat.Lookup("vitamin_d"); !ok {
		t.Error("built-in vitamin_d lost after merge")
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file loaded without error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed file loaded without error")
	}
}
