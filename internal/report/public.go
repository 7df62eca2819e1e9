// ABOUTME: Privacy-filtered summary payload for sharing outside the bridge.
// ABOUTME: Relative day labels, rounded values, no raw payloads or dates.
package report

import (
	"fmt"
	"math"

	"github.com/harperreed/hcbridge/internal/summary"
)

// publicSchemaVersion identifies the payload layout for consumers.
const publicSchemaVersion = 1

// publicWindowDays is how many trailing days the public payload covers.
const publicWindowDays = 14

// maxPublicInsights caps the shared insight list.
const maxPublicInsights = 20

// PublicDay is one day of the shareable payload. Labels are relative
// ("D-0" is today) so the export carries no absolute dates.
type PublicDay struct {
	Label       string   `json:"label"`
	Steps       *float64 `json:"steps,omitempty"`
	ActiveKcal  *float64 `json:"activeKcal,omitempty"`
	TotalKcal   *float64 `json:"totalKcal,omitempty"`
	IntakeKcal  *float64 `json:"intakeKcal,omitempty"`
	BalanceKcal *float64 `json:"balanceKcal,omitempty"`
	SleepHours  *float64 `json:"sleepHours,omitempty"`
	WeightKg    *float64 `json:"weightKg,omitempty"`
}

// PublicSummary is the full shareable payload.
type PublicSummary struct {
	SchemaVersion int               `json:"schemaVersion"`
	Days          []PublicDay       `json:"days"`
	Diet          *summary.Diet     `json:"diet,omitempty"`
	Insights      []summary.Insight `json:"insights"`
	GoalWeightKg  *float64          `json:"goalWeightKg,omitempty"`
}

// PublicSummary builds the shareable payload for the trailing two weeks.
// goalWeightKg may be nil when the profile has no goal set.
func (r *Reporter) PublicSummary(goalWeightKg *float64) (*PublicSummary, error) {
	s, err := r.engine.Build()
	if err != nil {
		return nil, err
	}

	today := r.now().In(r.loc)
	out := &PublicSummary{
		SchemaVersion: publicSchemaVersion,
		Diet:          s.Diet,
		GoalWeightKg:  roundPtr(goalWeightKg, 1),
	}
	for i := publicWindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		pd := PublicDay{
			Label:       fmt.Sprintf("D-%d", i),
			Steps:       rounded(s.StepsByDate, day, 0),
			ActiveKcal:  rounded(s.ActiveCaloriesByDate, day, 0),
			TotalKcal:   rounded(s.TotalCaloriesByDate, day, 0),
			IntakeKcal:  rounded(s.IntakeCaloriesByDate, day, 0),
			BalanceKcal: rounded(s.CalorieBalanceByDate, day, 0),
			SleepHours:  rounded(s.SleepHoursByDate, day, 1),
			WeightKg:    rounded(s.WeightByDate, day, 1),
		}
		out.Days = append(out.Days, pd)
	}

	insights := s.Insights
	if len(insights) > maxPublicInsights {
		insights = insights[:maxPublicInsights]
	}
	out.Insights = append([]summary.Insight{}, insights...)
	return out, nil
}

func rounded(points []summary.Point, day string, decimals int) *float64 {
	v := pointValue(points, day)
	return roundPtr(v, decimals)
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	scale := math.Pow(10, float64(decimals))
	r := math.Round(*v*scale) / scale
	return &r
}
