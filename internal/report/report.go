// ABOUTME: Human-readable daily report composed from the aggregated summary.
// ABOUTME: One screenful of yesterday's numbers plus the current insights.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/summary"
)

// Reporter renders text reports from engine output.
type Reporter struct {
	engine    *summary.Engine
	nutrition *nutrition.Service
	loc       *time.Location
	now       func() time.Time
}

// NewReporter wires a reporter to the aggregation engine and the nutrition
// service used for the meal listing.
func NewReporter(engine *summary.Engine, svc *nutrition.Service, loc *time.Location) *Reporter {
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{engine: engine, nutrition: svc, loc: loc, now: time.Now}
}

// Yesterday renders the report for the previous local day.
func (r *Reporter) Yesterday() (string, error) {
	day := r.now().In(r.loc).AddDate(0, 0, -1).Format("2006-01-02")
	return r.ForDay(day)
}

// ForDay renders the report for one local day (YYYY-MM-DD).
func (r *Reporter) ForDay(day string) (string, error) {
	s, err := r.engine.Build()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Health report for %s\n\n", day)

	writeLine := func(label string, points []summary.Point, unit string, decimals int) {
		v := pointValue(points, day)
		if v == nil {
			fmt.Fprintf(&b, "  %-16s -\n", label+":")
			return
		}
		fmt.Fprintf(&b, "  %-16s %.*f%s\n", label+":", decimals, *v, unit)
	}

	writeLine("Steps", s.StepsByDate, "", 0)
	writeLine("Distance", s.DistanceKmByDate, " km", 1)
	writeLine("Active burn", s.ActiveCaloriesByDate, " kcal", 0)
	writeLine("Total burn", s.TotalCaloriesByDate, " kcal", 0)
	writeLine("Intake", s.IntakeCaloriesByDate, " kcal", 0)
	if v := pointValue(s.CalorieBalanceByDate, day); v != nil {
		fmt.Fprintf(&b, "  %-16s %+.0f kcal\n", "Balance:", *v)
	}
	if v := pointValue(s.SleepMinutesByDate, day); v != nil {
		fmt.Fprintf(&b, "  %-16s %dh %02dm\n", "Sleep:", int(*v)/60, int(*v)%60)
	}
	writeLine("Weight", s.WeightByDate, " kg", 1)
	writeLine("Resting HR", s.RestingHeartRateBpmByDate, " bpm", 0)

	r.writeMeals(&b, day)
	writeInsights(&b, s.Insights)
	return b.String(), nil
}

func (r *Reporter) writeMeals(b *strings.Builder, day string) {
	if r.nutrition == nil {
		return
	}
	events, err := r.nutrition.DayEvents(day)
	if err != nil || len(events) == 0 {
		return
	}
	fmt.Fprintf(b, "\nNutrition (%d item(s)):\n", len(events))
	for _, ev := range events {
		when := ev.ConsumedAt.In(r.loc).Format("15:04")
		fmt.Fprintf(b, "  %s  %s x%g", when, ev.Label, ev.Count)
		if ev.Kcal != nil {
			fmt.Fprintf(b, "  (%.0f kcal)", *ev.Kcal*ev.Count)
		}
		b.WriteString("\n")
	}
	if totals, err := r.nutrition.DayTotals(day); err == nil && totals.Kcal != nil {
		fmt.Fprintf(b, "  Total: %.0f kcal", *totals.Kcal)
		if totals.ProteinG != nil {
			fmt.Fprintf(b, ", %.0fg protein", *totals.ProteinG)
		}
		b.WriteString("\n")
	}
}

func writeInsights(b *strings.Builder, insights []summary.Insight) {
	if len(insights) == 0 {
		return
	}
	b.WriteString("\nInsights:\n")
	for _, in := range insights {
		fmt.Fprintf(b, "  [%s] %s\n", in.Level, in.Message)
	}
}

func pointValue(points []summary.Point, day string) *float64 {
	for _, p := range points {
		if p.Date == day {
			return p.Value
		}
	}
	return nil
}
