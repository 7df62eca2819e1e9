// ABOUTME: Daily intake-calories upsert and queries.
// ABOUTME: Last write wins per day.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// UpsertIntake stores the intake calories for a day, overwriting any prior
// value for that day.
func (d *DB) UpsertIntake(in *models.IntakeDay) error {
	_, err := d.db.Exec(`
		INSERT INTO intake_calories_daily(day, intake_kcal, source, note, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(day) DO UPDATE SET
		  intake_kcal = excluded.intake_kcal,
		  source = excluded.source,
		  note = excluded.note,
		  updated_at = excluded.updated_at
	`, in.Day, in.IntakeKcal, in.Source, in.Note, iso(in.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert intake: %w", err)
	}
	return nil
}

// AllIntake returns intake kcal keyed by day.
func (d *DB) AllIntake() (map[string]float64, error) {
	rows, err := d.db.Query(`SELECT day, intake_kcal FROM intake_calories_daily`)
	if err != nil {
		return nil, fmt.Errorf("list intake: %w", err)
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var day string
		var kcal float64
		if err := rows.Scan(&day, &kcal); err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		out[day] = kcal
	}
	return out, rows.Err()
}

// GetIntake returns the intake record for one day, or ErrNotFound.
func (d *DB) GetIntake(day string) (*models.IntakeDay, error) {
	row := d.db.QueryRow(`
		SELECT day, intake_kcal, source, note, updated_at
		FROM intake_calories_daily WHERE day = ?
	`, day)

	var in models.IntakeDay
	var note sql.NullString
	var updatedAt string
	err := row.Scan(&in.Day, &in.IntakeKcal, &in.Source, &note, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get intake: %w", err)
	}
	in.Note = nullStr(note)
	in.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &in, nil
}
