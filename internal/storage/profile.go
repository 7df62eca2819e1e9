// ABOUTME: Single-row user profile with partial upsert semantics.
// ABOUTME: Keys not supplied in an update keep their existing values.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// GetProfile returns the profile row, or ErrNotFound if never set.
func (d *DB) GetProfile() (*models.Profile, error) {
	row := d.db.QueryRow(`
		SELECT name, height_cm, birth_year, sex, goal_weight_kg, updated_at
		FROM user_profile WHERE id = 1
	`)

	var p models.Profile
	var name, sex sql.NullString
	var height, goal sql.NullFloat64
	var birthYear sql.NullInt64
	var updatedAt string
	err := row.Scan(&name, &height, &birthYear, &sex, &goal, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.Name = nullStr(name)
	p.HeightCm = nullFloat(height)
	if birthYear.Valid {
		y := int(birthYear.Int64)
		p.BirthYear = &y
	}
	p.Sex = nullStr(sex)
	p.GoalWeightKg = nullFloat(goal)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &p, nil
}

// UpsertProfile partially updates the profile: nil fields in the update keep
// the stored value.
func (d *DB) UpsertProfile(update *models.Profile) (*models.Profile, error) {
	current, err := d.GetProfile()
	if err != nil && err != models.ErrNotFound {
		return nil, err
	}

	merged := models.Profile{UpdatedAt: time.Now()}
	if current != nil {
		merged = *current
		merged.UpdatedAt = time.Now()
	}
	if update.Name != nil {
		merged.Name = update.Name
	}
	if update.HeightCm != nil {
		merged.HeightCm = update.HeightCm
	}
	if update.BirthYear != nil {
		merged.BirthYear = update.BirthYear
	}
	if update.Sex != nil {
		merged.Sex = update.Sex
	}
	if update.GoalWeightKg != nil {
		merged.GoalWeightKg = update.GoalWeightKg
	}

	_, err = d.db.Exec(`
		INSERT INTO user_profile(id, name, height_cm, birth_year, sex, goal_weight_kg, updated_at)
		VALUES (1,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  height_cm = excluded.height_cm,
		  birth_year = excluded.birth_year,
		  sex = excluded.sex,
		  goal_weight_kg = excluded.goal_weight_kg,
		  updated_at = excluded.updated_at
	`, merged.Name, merged.HeightCm, merged.BirthYear, merged.Sex, merged.GoalWeightKg, iso(merged.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	return d.GetProfile()
}
