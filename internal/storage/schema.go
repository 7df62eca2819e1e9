// ABOUTME: SQL schema for the sync bridge database.
// ABOUTME: Health records, sync runs, nutrition dual representation, ledger.
package storage

import "fmt"

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
    sync_id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    synced_at TEXT NOT NULL,
    range_start TEXT NOT NULL,
    range_end TEXT NOT NULL,
    received_at TEXT NOT NULL,
    record_count INTEGER NOT NULL,
    upserted_count INTEGER NOT NULL DEFAULT 0,
    skipped_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS health_records (
    record_key TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    type TEXT NOT NULL,
    record_id TEXT,
    source TEXT,
    start_time TEXT,
    end_time TEXT,
    time TEXT,
    last_modified_time TEXT,
    unit TEXT,
    payload_json TEXT NOT NULL,
    ingested_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nutrition_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    consumed_at TEXT NOT NULL,
    local_date TEXT NOT NULL,
    alias TEXT,
    label TEXT NOT NULL,
    count REAL NOT NULL DEFAULT 1,
    unit TEXT,
    kcal REAL,
    protein_g REAL,
    fat_g REAL,
    carbs_g REAL,
    micros_json TEXT,
    note TEXT
);

CREATE TABLE IF NOT EXISTS nutrient_keys (
    key TEXT PRIMARY KEY,
    unit TEXT,
    display_name TEXT,
    category TEXT
);

CREATE TABLE IF NOT EXISTS nutrition_nutrients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id INTEGER NOT NULL REFERENCES nutrition_events(id) ON DELETE CASCADE,
    local_date TEXT NOT NULL,
    nutrient_key TEXT NOT NULL,
    value REAL NOT NULL,
    unit TEXT
);

CREATE TABLE IF NOT EXISTS intake_calories_daily (
    day TEXT PRIMARY KEY,
    intake_kcal REAL NOT NULL,
    source TEXT NOT NULL DEFAULT 'automation',
    note TEXT,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ingest_events (
    event_id TEXT PRIMARY KEY,
    ingested_at TEXT NOT NULL,
    source TEXT,
    payload_hash TEXT
);

CREATE TABLE IF NOT EXISTS user_profile (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    name TEXT,
    height_cm REAL,
    birth_year INTEGER,
    sex TEXT,
    goal_weight_kg REAL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ai_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    report_date TEXT NOT NULL,
    report_type TEXT NOT NULL,
    prompt_used TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_health_records_type ON health_records(type);
CREATE INDEX IF NOT EXISTS idx_health_records_ingested_at ON health_records(ingested_at);
CREATE INDEX IF NOT EXISTS idx_nutrition_events_local_date ON nutrition_events(local_date);
CREATE INDEX IF NOT EXISTS idx_nutrition_events_consumed_at ON nutrition_events(consumed_at);
CREATE INDEX IF NOT EXISTS idx_nutrition_nutrients_local_date ON nutrition_nutrients(local_date);
CREATE INDEX IF NOT EXISTS idx_nutrition_nutrients_key ON nutrition_nutrients(nutrient_key);
CREATE INDEX IF NOT EXISTS idx_nutrition_nutrients_event_id ON nutrition_nutrients(event_id);
CREATE INDEX IF NOT EXISTS idx_intake_calories_updated_at ON intake_calories_daily(updated_at);
CREATE INDEX IF NOT EXISTS idx_ingest_events_ingested_at ON ingest_events(ingested_at);
CREATE INDEX IF NOT EXISTS idx_ai_reports_date ON ai_reports(report_date, created_at);
`

// NutrientKeySeed is one row of the nutrient key registry.
type NutrientKeySeed struct {
	Key         string
	Unit        string
	DisplayName string
	Category    string
}

// nutrientKeySeeds is the initial registry. New keys encountered in logged
// micros are registered on demand with just a unit.
var nutrientKeySeeds = []NutrientKeySeed{
	{"energy_kcal", "kcal", "Energy", "macros"},
	{"protein_g", "g", "Protein", "macros"},
	{"fat_g", "g", "Fat", "macros"},
	{"carbs_g", "g", "Carbs", "macros"},
	{"sugar_g", "g", "Sugar", "macros"},
	{"dietary_fiber_g", "g", "Dietary fiber", "macros"},

	{"sodium_mg", "mg", "Sodium", "minerals"},
	{"potassium_mg", "mg", "Potassium", "minerals"},
	{"calcium_mg", "mg", "Calcium", "minerals"},
	{"magnesium_mg", "mg", "Magnesium", "minerals"},
	{"phosphorus_mg", "mg", "Phosphorus", "minerals"},
	{"iron_mg", "mg", "Iron", "minerals"},
	{"zinc_mg", "mg", "Zinc", "minerals"},
	{"copper_mg", "mg", "Copper", "minerals"},
	{"selenium_mcg", "mcg", "Selenium", "minerals"},
	{"chromium_mcg", "mcg", "Chromium", "minerals"},
	{"manganese_mg", "mg", "Manganese", "minerals"},
	{"iodine_mcg", "mcg", "Iodine", "minerals"},
	{"molybdenum_mcg", "mcg", "Molybdenum", "minerals"},

	{"vitamin_a_mcg", "mcg", "Vitamin A", "vitamins"},
	{"vitamin_b1_mg", "mg", "Vitamin B1", "vitamins"},
	{"vitamin_b2_mg", "mg", "Vitamin B2", "vitamins"},
	{"vitamin_b6_mg", "mg", "Vitamin B6", "vitamins"},
	{"vitamin_b12_mcg", "mcg", "Vitamin B12", "vitamins"},
	{"niacin_mg", "mg", "Niacin", "vitamins"},
	{"pantothenic_acid_mg", "mg", "Pantothenic acid", "vitamins"},
	{"biotin_mcg", "mcg", "Biotin", "vitamins"},
	{"folate_mcg", "mcg", "Folate", "vitamins"},
	{"vitamin_c_mg", "mg", "Vitamin C", "vitamins"},
	{"vitamin_d_mcg", "mcg", "Vitamin D", "vitamins"},
	{"vitamin_d3_iu", "iu", "Vitamin D3", "vitamins"},
	{"vitamin_d3_mcg", "mcg", "Vitamin D3", "vitamins"},
	{"vitamin_e_mg", "mg", "Vitamin E", "vitamins"},
	{"vitamin_k_mcg", "mcg", "Vitamin K", "vitamins"},

	{"epa_mg", "mg", "EPA", "lipids"},
	{"dha_mg", "mg", "DHA", "lipids"},
	{"omega3_mg", "mg", "Omega-3 (EPA+DHA)", "lipids"},
	{"omega6_mg", "mg", "Omega-6", "lipids"},

	{"cholesterol_mg", "mg", "Cholesterol", "other"},
	{"saturated_fat_g", "g", "Saturated fat", "other"},
	{"trans_fat_g", "g", "Trans fat", "other"},
	{"alcohol_g", "g", "Alcohol", "other"},
	{"caffeine_mg", "mg", "Caffeine", "other"},
	{"salt_equivalent_g", "g", "Salt equivalent", "other"},
	{"salt_equivalent_g_max", "g", "Salt equivalent (max)", "other"},
}

func (d *DB) initSchema() error {
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, nk := range nutrientKeySeeds {
		_, err := d.db.Exec(
			`INSERT OR IGNORE INTO nutrient_keys(key, unit, display_name, category) VALUES (?, ?, ?, ?)`,
			nk.Key, nk.Unit, nk.DisplayName, nk.Category,
		)
		if err != nil {
			return fmt.Errorf("seed nutrient key %s: %w", nk.Key, err)
		}
	}
	return nil
}
