// ABOUTME: User profile and saved generated-report models.
// ABOUTME: The profile is a single partial-upsert row; reports are append-only.
package models

import "time"

// Profile is the single-user profile row.
type Profile struct {
	Name         *string  `json:"name"`
	HeightCm     *float64 `json:"height_cm"`
	BirthYear    *int     `json:"birth_year"`
	Sex          *string  `json:"sex"`
	GoalWeightKg *float64 `json:"goal_weight_kg"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavedReport is a persisted generated report.
type SavedReport struct {
	ID         int64     `json:"id"`
	ReportDate string    `json:"report_date"`
	ReportType string    `json:"report_type"`
	PromptUsed string    `json:"prompt_used,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidReportTypes are the accepted report_type values.
var ValidReportTypes = []string{"daily", "weekly", "monthly"}

// IsValidReportType checks a report type string.
func IsValidReportType(s string) bool {
	for _, t := range ValidReportTypes {
		if t == s {
			return true
		}
	}
	return false
}
