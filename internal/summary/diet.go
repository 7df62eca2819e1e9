// ABOUTME: Weight trend classification from the 7-day moving average.
// ABOUTME: Maps the weekly MA7 delta to a trend label and deficit estimate.
package summary

// kcalPerKgBodyFat converts a weight delta to an energy balance. The usual
// 7700 kcal/kg figure for body fat.
const kcalPerKgBodyFat = 7700.0

// Trend thresholds on the 7-day MA7 delta in kg.
const (
	gainThreshold     = 0.1
	plateauThreshold  = -0.1
	slowLossThreshold = -0.25
)

// ma7Window is the moving-average window in days.
const ma7Window = 7

// dietFrom classifies the weight trend from the carry-forward daily series.
// The delta compares today's MA7 to the MA7 seven days earlier, so a single
// noisy weigh-in cannot flip the label.
func dietFrom(daily []DailyPoint, measured map[string]float64) *Diet {
	d := &Diet{Trend: TrendUnknown}
	if first, last, ok := firstLast(measured); ok {
		raw := last - first
		d.RawDeltaFromStart = &raw
	}

	ma7 := movingAverage(daily, ma7Window)
	if len(ma7) < ma7Window+1 {
		return d
	}
	cur := ma7[len(ma7)-1]
	prev := ma7[len(ma7)-1-ma7Window]
	if cur == nil || prev == nil {
		return d
	}
	delta := *cur - *prev
	d.MA7Delta7d = &delta

	switch {
	case delta > gainThreshold:
		d.Trend = TrendGain
	case delta > plateauThreshold:
		d.Trend = TrendPlateau
	case delta > slowLossThreshold:
		d.Trend = TrendSlowLoss
	default:
		d.Trend = TrendLoss
	}
	d.Plateau = d.Trend == TrendPlateau || d.Trend == TrendGain

	deficit := -(delta * kcalPerKgBodyFat) / 7.0
	d.EstimatedDeficitKcalPerDay = &deficit
	return d
}

func firstLast(m map[string]float64) (first, last float64, ok bool) {
	var firstDay, lastDay string
	for d := range m {
		if firstDay == "" || d < firstDay {
			firstDay = d
		}
		if d > lastDay {
			lastDay = d
		}
	}
	if firstDay == "" {
		return 0, 0, false
	}
	return m[firstDay], m[lastDay], true
}
