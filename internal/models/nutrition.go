// ABOUTME: Nutrition event, exploded nutrient, intake and ledger models.
// ABOUTME: Events carry per-unit macros; nutrient rows carry absolute amounts.
package models

import "time"

// NutritionEvent is one logged consumption (meal, drink, supplement).
// Macro fields are per unit; multiply by Count for the absolute amount.
type NutritionEvent struct {
	ID         int64              `json:"id"`
	ConsumedAt time.Time          `json:"consumed_at"`
	LocalDate  string             `json:"local_date"`
	Alias      *string            `json:"alias,omitempty"`
	Label      string             `json:"label"`
	Count      float64            `json:"count"`
	Unit       *string            `json:"unit,omitempty"`
	Kcal       *float64           `json:"kcal,omitempty"`
	ProteinG   *float64           `json:"protein_g,omitempty"`
	FatG       *float64           `json:"fat_g,omitempty"`
	CarbsG     *float64           `json:"carbs_g,omitempty"`
	Micros     map[string]float64 `json:"micros,omitempty"`
	Note       *string            `json:"note,omitempty"`
}

// NutrientAmount is one exploded per-event nutrient row. Value is absolute
// (already multiplied by the event count). The exploded table is the sole
// source for day totals; the event table is for display.
type NutrientAmount struct {
	EventID   int64
	LocalDate string
	Key       string
	Value     float64
	Unit      *string
}

// DayTotals are the summed nutrients for one local date.
type DayTotals struct {
	Kcal     *float64           `json:"kcal"`
	ProteinG *float64           `json:"protein_g"`
	FatG     *float64           `json:"fat_g"`
	CarbsG   *float64           `json:"carbs_g"`
	Micros   map[string]float64 `json:"micros"`
}

// IngestedEvent is one append-only idempotency ledger row.
type IngestedEvent struct {
	EventID     string
	IngestedAt  time.Time
	Source      *string
	PayloadHash string
}

// IntakeDay is a manually entered daily intake-calories record.
type IntakeDay struct {
	Day        string
	IntakeKcal float64
	Source     string
	Note       *string
	UpdatedAt  time.Time
}
