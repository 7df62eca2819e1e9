// ABOUTME: Advisory insight generation from the aggregated series.
// ABOUTME: Heuristic thresholds tuned for a single user's daily review.
package summary

import (
	"fmt"
	"math"
	"time"
)

// Insight thresholds. Drops compare the last 7 days to the 7 before.
const (
	minWeighInsPerWeek   = 4
	dropRatio            = 0.85
	stepsDropAbsolute    = 1500.0
	stepsLowAverage      = 7000.0
	activeLowKcal        = 250.0
	sleepShortMinutes    = 360.0
	surplusWarnKcal      = -100.0
	smallDeficitKcal     = 150.0
	minComparisonSamples = 3
)

func (e *Engine) buildInsights(s *Summary, weight, steps, intake, totalCal map[string]float64, active, sleepMinutes map[string]float64) []Insight {
	var out []Insight
	add := func(level, format string, args ...any) {
		out = append(out, Insight{Level: level, Message: fmt.Sprintf(format, args...)})
	}

	today := e.localDay(e.now())
	if n := countRecentDays(weight, today, 7); n < minWeighInsPerWeek {
		add(LevelInfo, "Only %d weigh-ins in the last 7 days; daily weigh-ins keep the trend reliable.", n)
	}

	if len(active) == 0 && len(totalCal) == 0 {
		add(LevelInfo, "No calorie burn data yet; sync activity records to track energy balance.")
	}
	if len(intake) == 0 {
		add(LevelInfo, "No intake calories recorded yet; log meals to see calorie balance.")
	}
	if len(sleepMinutes) == 0 {
		add(LevelInfo, "No sleep data yet.")
	}

	if avg, n := averageRecent(s.CalorieBalanceByDate, 7); n > 0 {
		add(LevelInfo, "Average calorie balance over the last %d day(s): %+.0f kcal/day.", n, avg)
	}

	d := s.Diet
	weeklyKg := 0.0
	if d.MA7Delta7d != nil {
		weeklyKg = *d.MA7Delta7d
	}
	switch d.Trend {
	case TrendGain:
		add(LevelWarn, "Weight trend is rising (%+.2f kg over 7 days).", weeklyKg)
	case TrendPlateau:
		add(LevelWarn, "Weight trend has plateaued (%+.2f kg over 7 days).", weeklyKg)
	case TrendSlowLoss:
		add(LevelInfo, "Weight is coming down slowly (%+.2f kg over 7 days).", weeklyKg)
	case TrendLoss:
		add(LevelInfo, "Weight is trending down (%+.2f kg over 7 days).", weeklyKg)
	}

	if d.Plateau {
		e.stallInsights(add, steps, active, sleepMinutes, intake, totalCal)
	}

	if d.EstimatedDeficitKcalPerDay != nil {
		est := *d.EstimatedDeficitKcalPerDay
		if est < surplusWarnKcal {
			add(LevelWarn, "Estimated surplus of %.0f kcal/day based on the weight trend.", -est)
		} else if est < smallDeficitKcal {
			add(LevelInfo, "Estimated deficit is small (%.0f kcal/day); progress will be slow.", math.Max(est, 0))
		}
	}
	return out
}

// stallInsights looks for what changed when the weight trend stalls. The
// recent-vs-previous windows are calendar weeks, so the measured maps are
// expanded to daily series before averaging; a sparse series must not let
// "the last 7 points" reach back a month.
func (e *Engine) stallInsights(add func(level, format string, args ...any), steps, active, sleepMinutes, intake, totalCal map[string]float64) {
	recent, prev, rn, pn := tailAverages(fillSparse(steps), 7)
	if rn >= minComparisonSamples && pn >= minComparisonSamples {
		if recent < prev*dropRatio || recent-prev < -stepsDropAbsolute {
			add(LevelWarn, "Daily steps dropped versus the previous week (%.0f vs %.0f).", recent, prev)
		}
	}
	if rn > 0 && recent < stepsLowAverage {
		add(LevelInfo, "Daily steps are averaging below %.0f (%.0f).", stepsLowAverage, recent)
	}

	recent, prev, rn, pn = tailAverages(fillSparse(active), 7)
	if rn >= minComparisonSamples && pn >= minComparisonSamples && recent < prev*dropRatio {
		add(LevelWarn, "Active calories dropped versus the previous week (%.0f vs %.0f kcal/day).", recent, prev)
	}
	if rn > 0 && recent < activeLowKcal {
		add(LevelInfo, "Active calories are averaging below %.0f kcal/day (%.0f).", activeLowKcal, recent)
	}

	recent, prev, rn, pn = tailAverages(fillSparse(sleepMinutes), 7)
	if rn > 0 {
		if recent < sleepShortMinutes {
			add(LevelWarn, "Averaging under 6 hours of sleep (%.0f min/night).", recent)
		} else if pn >= minComparisonSamples && recent < prev*dropRatio {
			add(LevelInfo, "Sleep duration dropped versus the previous week (%.0f vs %.0f min).", recent, prev)
		}
	}

	missing := 0
	for day := range totalCal {
		if _, ok := intake[day]; !ok {
			missing++
		}
	}
	if missing > 0 {
		add(LevelInfo, "Intake logging has gaps on %d day(s); log every day for an accurate balance.", missing)
	}
}

// countRecentDays counts days in m within the n days ending today.
func countRecentDays(m map[string]float64, today string, n int) int {
	cutoff := addDays(today, -(n - 1))
	count := 0
	for d := range m {
		if d >= cutoff && d <= today {
			count++
		}
	}
	return count
}

func addDays(day string, n int) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format("2006-01-02")
}

// averageRecent averages the last n non-nil points of a date-ordered series.
func averageRecent(points []Point, n int) (avg float64, count int) {
	sum := 0.0
	for i := len(points) - 1; i >= 0 && count < n; i-- {
		if points[i].Value != nil {
			sum += *points[i].Value
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}
