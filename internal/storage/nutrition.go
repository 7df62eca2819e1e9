// ABOUTME: Nutrition event persistence with dual representation.
// ABOUTME: Raw event rows for display, exploded nutrient rows for aggregates.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// Macro nutrient keys written from the event's own macro columns.
const (
	KeyEnergy  = "energy_kcal"
	KeyProtein = "protein_g"
	KeyFat     = "fat_g"
	KeyCarbs   = "carbs_g"
)

// InsertNutritionEvent stores an event and its exploded nutrient rows in one
// transaction. Nutrient values are absolute amounts (per-unit value times
// count). Returns the generated event id.
func (d *DB) InsertNutritionEvent(ev *models.NutritionEvent) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var microsJSON *string
	if len(ev.Micros) > 0 {
		b, err := json.Marshal(ev.Micros)
		if err != nil {
			return 0, fmt.Errorf("marshal micros: %w", err)
		}
		s := string(b)
		microsJSON = &s
	}

	res, err := tx.Exec(`
		INSERT INTO nutrition_events(
		  consumed_at, local_date, alias, label, count, unit,
		  kcal, protein_g, fat_g, carbs_g, micros_json, note
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		ev.ConsumedAt.Format(time.RFC3339),
		ev.LocalDate,
		ev.Alias,
		ev.Label,
		ev.Count,
		ev.Unit,
		ev.Kcal,
		ev.ProteinG,
		ev.FatG,
		ev.CarbsG,
		microsJSON,
		ev.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert nutrition event: %w", err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event id: %w", err)
	}

	for _, n := range explodeNutrients(eventID, ev) {
		if err := ensureNutrientKey(tx, n.Key, n.Unit); err != nil {
			return 0, err
		}
		_, err := tx.Exec(`
			INSERT INTO nutrition_nutrients(event_id, local_date, nutrient_key, value, unit)
			VALUES (?,?,?,?,?)
		`, n.EventID, n.LocalDate, n.Key, n.Value, n.Unit)
		if err != nil {
			return 0, fmt.Errorf("insert nutrient %s: %w", n.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	ev.ID = eventID
	return eventID, nil
}

// explodeNutrients builds the per-nutrient rows for an event. Macro columns
// map to fixed keys; micros pass through with their own keys. Keys are
// emitted in sorted order so inserts are deterministic.
func explodeNutrients(eventID int64, ev *models.NutritionEvent) []models.NutrientAmount {
	type val struct {
		v    float64
		unit *string
	}
	unitOf := func(u string) *string { return &u }

	amounts := map[string]val{}
	if ev.Kcal != nil {
		amounts[KeyEnergy] = val{*ev.Kcal * ev.Count, unitOf("kcal")}
	}
	if ev.ProteinG != nil {
		amounts[KeyProtein] = val{*ev.ProteinG * ev.Count, unitOf("g")}
	}
	if ev.FatG != nil {
		amounts[KeyFat] = val{*ev.FatG * ev.Count, unitOf("g")}
	}
	if ev.CarbsG != nil {
		amounts[KeyCarbs] = val{*ev.CarbsG * ev.Count, unitOf("g")}
	}
	for k, v := range ev.Micros {
		amounts[k] = val{v * ev.Count, nil}
	}

	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.NutrientAmount, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.NutrientAmount{
			EventID:   eventID,
			LocalDate: ev.LocalDate,
			Key:       k,
			Value:     amounts[k].v,
			Unit:      amounts[k].unit,
		})
	}
	return out
}

func ensureNutrientKey(tx *sql.Tx, key string, unit *string) error {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO nutrient_keys(key, unit) VALUES (?, ?)`, key, unit); err != nil {
		return fmt.Errorf("ensure nutrient key %s: %w", key, err)
	}
	return nil
}

// DeleteNutritionEvent removes an event and its nutrient rows. Returns
// ErrNotFound when no event with the id exists.
func (d *DB) DeleteNutritionEvent(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM nutrition_nutrients WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete nutrients: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM nutrition_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return tx.Commit()
}

// DayEvents lists the events for one local date ordered by consumption time.
func (d *DB) DayEvents(localDate string) ([]*models.NutritionEvent, error) {
	rows, err := d.db.Query(`
		SELECT id, consumed_at, local_date, alias, label, count, unit,
		       kcal, protein_g, fat_g, carbs_g, micros_json, note
		FROM nutrition_events
		WHERE local_date = ?
		ORDER BY consumed_at ASC
	`, localDate)
	if err != nil {
		return nil, fmt.Errorf("day events: %w", err)
	}
	defer rows.Close()

	var out []*models.NutritionEvent
	for rows.Next() {
		var ev models.NutritionEvent
		var consumedAt string
		var alias, unit, microsJSON, note sql.NullString
		var kcal, protein, fat, carbs sql.NullFloat64

		err := rows.Scan(&ev.ID, &consumedAt, &ev.LocalDate, &alias, &ev.Label,
			&ev.Count, &unit, &kcal, &protein, &fat, &carbs, &microsJSON, &note)
		if err != nil {
			return nil, fmt.Errorf("scan nutrition event: %w", err)
		}

		ev.ConsumedAt, _ = time.Parse(time.RFC3339, consumedAt)
		ev.Alias = nullStr(alias)
		ev.Unit = nullStr(unit)
		ev.Kcal = nullFloat(kcal)
		ev.ProteinG = nullFloat(protein)
		ev.FatG = nullFloat(fat)
		ev.CarbsG = nullFloat(carbs)
		ev.Note = nullStr(note)
		if microsJSON.Valid && microsJSON.String != "" {
			// Malformed stored micros degrade to nil rather than failing the listing.
			_ = json.Unmarshal([]byte(microsJSON.String), &ev.Micros)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// DayTotals sums the exploded nutrient table for one local date. The event
// table is never consulted here; the nutrient rows are the source of truth
// for aggregates.
func (d *DB) DayTotals(localDate string) (*models.DayTotals, error) {
	rows, err := d.db.Query(`
		SELECT nutrient_key, SUM(value)
		FROM nutrition_nutrients
		WHERE local_date = ?
		GROUP BY nutrient_key
	`, localDate)
	if err != nil {
		return nil, fmt.Errorf("day totals: %w", err)
	}
	defer rows.Close()

	totals := map[string]float64{}
	for rows.Next() {
		var key string
		var total float64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals[key] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := &models.DayTotals{Micros: map[string]float64{}}
	for k, v := range totals {
		v := v
		switch k {
		case KeyEnergy:
			out.Kcal = &v
		case KeyProtein:
			out.ProteinG = &v
		case KeyFat:
			out.FatG = &v
		case KeyCarbs:
			out.CarbsG = &v
		default:
			out.Micros[k] = v
		}
	}
	return out, nil
}
