// ABOUTME: Aggregation engine turning raw health records into daily series.
// ABOUTME: Collapses duplicate sources, derives calorie balance and weight trend.
package summary

import (
	"sort"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/storage"
)

// Engine recomputes the full summary from store contents on every Build
// call. It holds no state between calls.
type Engine struct {
	store         *storage.DB
	loc           *time.Location
	bmrKcalPerDay float64
	now           func() time.Time
}

// NewEngine returns an engine aggregating in the given location. bmrKcal is
// the fixed basal rate used for calorie balance; device BMR records are too
// noisy to trust directly.
func NewEngine(store *storage.DB, loc *time.Location, bmrKcal float64) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, loc: loc, bmrKcalPerDay: bmrKcal, now: time.Now}
}

func (e *Engine) localDay(t time.Time) string {
	return t.In(e.loc).Format("2006-01-02")
}

// Build runs the full aggregation.
func (e *Engine) Build() (*Summary, error) {
	s := &Summary{SkippedRows: make(map[string]int)}

	var err error
	if s.TotalRecords, err = e.store.CountRecords(); err != nil {
		return nil, err
	}
	if s.ByType, err = e.store.CountRecordsByType(); err != nil {
		return nil, err
	}

	steps, err := e.summedByDay(models.TypeSteps, func(p map[string]any) (float64, bool) {
		return findNumber(p, "count", "steps")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	distance, err := e.summedByDay(models.TypeDistance, distanceKm, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	active, err := e.summedByDay(models.TypeActiveCalories, func(p map[string]any) (float64, bool) {
		return findNumber(p, "inKilocalories", "kilocalories", "kcal")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	rawTotal, err := e.summedByDay(models.TypeTotalCalories, func(p map[string]any) (float64, bool) {
		return findNumber(p, "inKilocalories", "kilocalories", "kcal")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}

	weight, err := e.latestByDay(models.TypeWeight, func(p map[string]any) (float64, bool) {
		return findNumber(p, "inKilograms", "kilograms", "kg")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	restingHR, err := e.latestByDay(models.TypeRestingHR, func(p map[string]any) (float64, bool) {
		return findNumber(p, "beatsPerMinute", "bpm")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	spo2, err := e.latestByDay(models.TypeOxygenSat, percentExtractor, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	bodyFat, err := e.latestByDay(models.TypeBodyFat, percentExtractor, s.SkippedRows)
	if err != nil {
		return nil, err
	}

	sleepMinutes, err := e.sleepByDay(s.SkippedRows)
	if err != nil {
		return nil, err
	}
	speed, err := e.sampledByDay(models.TypeSpeed, speedKmh, s.SkippedRows)
	if err != nil {
		return nil, err
	}
	heartRate, err := e.sampledByDay(models.TypeHeartRate, func(m map[string]any) (float64, bool) {
		return findNumber(m, "beatsPerMinute", "bpm")
	}, s.SkippedRows)
	if err != nil {
		return nil, err
	}

	if err := e.countBMRSkips(s.SkippedRows); err != nil {
		return nil, err
	}

	intake, err := e.store.AllIntake()
	if err != nil {
		return nil, err
	}

	anchor := unionDays(rawTotal, intake, active, weight, steps)
	bmrPoints := e.bmrSeries(anchor)

	// Effective total burn: the raw TotalCalories series under-reports on
	// days the watch was off, so every day the fixed-rate span covers gets
	// floored at BMR plus active burn, recorded total or not.
	totalCal := make(map[string]float64, len(rawTotal)+len(bmrPoints))
	for day, v := range rawTotal {
		totalCal[day] = v
	}
	for _, p := range bmrPoints {
		floor := e.bmrKcalPerDay + active[p.Date]
		if cur, ok := totalCal[p.Date]; !ok || floor > cur {
			totalCal[p.Date] = floor
		}
	}

	applyIntakeCarry(intake, totalCal)

	balance := make(map[string]float64)
	for day, tot := range totalCal {
		if in, ok := intake[day]; ok {
			balance[day] = tot - in
		}
	}

	s.BasalMetabolicRateKcalByDate = bmrPoints

	s.StepsByDate = sortedSeries(steps)
	s.DistanceKmByDate = sortedSeries(distance)
	s.WeightByDate = sortedSeries(weight)
	s.ActiveCaloriesByDate = sortedSeries(active)
	s.TotalCaloriesByDate = sortedSeries(totalCal)
	s.IntakeCaloriesByDate = sortedSeries(intake)
	s.CalorieBalanceByDate = sortedSeries(balance)
	s.SleepMinutesByDate = sortedSeries(sleepMinutes)
	s.SleepHoursByDate = scaledSeries(sleepMinutes, 1.0/60.0)
	s.SpeedKmhByDate = sortedSeries(speed)
	s.HeartRateBpmByDate = sortedSeries(heartRate)
	s.RestingHeartRateBpmByDate = sortedSeries(restingHR)
	s.OxygenSaturationPctByDate = sortedSeries(spo2)
	s.BodyFatPctByDate = sortedSeries(bodyFat)

	s.WeightDaily = fillCarryForward(weight)
	s.Diet = dietFrom(s.WeightDaily, weight)
	s.Insights = e.buildInsights(s, weight, steps, intake, totalCal, active, sleepMinutes)
	return s, nil
}

func percentExtractor(p map[string]any) (float64, bool) {
	v, ok := findNumber(p, "percentage", "percent", "value")
	if !ok {
		return 0, false
	}
	return toPercent(v), true
}

// summedByDay sums one value per record into (local day of startTime, source)
// buckets, then keeps the max across sources per day. Summing across sources
// would double-count a phone and a watch reporting the same activity.
func (e *Engine) summedByDay(recordType string, extract func(map[string]any) (float64, bool), skipped map[string]int) (map[string]float64, error) {
	recs, err := e.store.ListRecordsByType(recordType)
	if err != nil {
		return nil, err
	}
	acc := make(map[daySource]float64)
	for _, r := range recs {
		v, ok := extract(r.Payload())
		if !ok || r.StartTime == nil {
			skipped[recordType]++
			continue
		}
		acc[daySource{day: e.localDay(*r.StartTime), source: sourceOf(r)}] += v
	}
	return maxAcrossSources(acc), nil
}

// latestByDay keeps the newest reading per local day, preferring the
// record's instant time over its range times.
func (e *Engine) latestByDay(recordType string, extract func(map[string]any) (float64, bool), skipped map[string]int) (map[string]float64, error) {
	recs, err := e.store.ListRecordsByType(recordType)
	if err != nil {
		return nil, err
	}
	acc := make(map[string]dated)
	for _, r := range recs {
		at := recordInstant(r)
		v, ok := extract(r.Payload())
		if !ok || at == nil {
			skipped[recordType]++
			continue
		}
		latestWins(acc, e.localDay(*at), *at, v)
	}
	return datedValues(acc), nil
}

// sleepByDay collects sessions per (start day, source), unions overlapping
// intervals within each bucket, and keeps the max minutes across sources.
func (e *Engine) sleepByDay(skipped map[string]int) (map[string]float64, error) {
	recs, err := e.store.ListRecordsByType(models.TypeSleepSession)
	if err != nil {
		return nil, err
	}
	buckets := make(map[daySource][]interval)
	for _, r := range recs {
		if r.StartTime == nil || r.EndTime == nil || !r.EndTime.After(*r.StartTime) {
			skipped[models.TypeSleepSession]++
			continue
		}
		k := daySource{day: e.localDay(*r.StartTime), source: sourceOf(r)}
		buckets[k] = append(buckets[k], interval{start: *r.StartTime, end: *r.EndTime})
	}
	perSource := make(map[daySource]float64, len(buckets))
	for k, ivs := range buckets {
		perSource[k] = mergedMinutes(ivs)
	}
	return maxAcrossSources(perSource), nil
}

// sampledByDay averages per-sample values into (sample day, source) buckets,
// then keeps the max average across sources per day.
func (e *Engine) sampledByDay(recordType string, extract func(map[string]any) (float64, bool), skipped map[string]int) (map[string]float64, error) {
	recs, err := e.store.ListRecordsByType(recordType)
	if err != nil {
		return nil, err
	}
	type agg struct {
		sum float64
		n   int
	}
	acc := make(map[daySource]*agg)
	add := func(k daySource, v float64) {
		if acc[k] == nil {
			acc[k] = &agg{}
		}
		acc[k].sum += v
		acc[k].n++
	}
	for _, r := range recs {
		payload := r.Payload()
		fallback := recordInstant(r)
		if fallback == nil {
			skipped[recordType]++
			continue
		}
		src := sourceOf(r)
		samplesAny, _ := payload["samples"].([]any)
		if len(samplesAny) == 0 {
			// Single-reading records carry the value in the payload itself.
			v, ok := extract(payload)
			if !ok {
				skipped[recordType]++
				continue
			}
			add(daySource{day: e.localDay(*fallback), source: src}, v)
			continue
		}
		for _, sa := range samplesAny {
			sample, ok := sa.(map[string]any)
			if !ok {
				continue
			}
			v, ok := extract(sample)
			if !ok {
				continue
			}
			at := sampleTime(sample, *fallback)
			add(daySource{day: e.localDay(at), source: src}, v)
		}
	}
	perSource := make(map[daySource]float64, len(acc))
	for k, a := range acc {
		perSource[k] = a.sum / float64(a.n)
	}
	return maxAcrossSources(perSource), nil
}

// Plausibility bounds for device-reported basal rates in kcal/day.
const (
	bmrPlausibleMin = 600
	bmrPlausibleMax = 4000
)

// countBMRSkips scans BasalMetabolicRate records only for the skip
// diagnostics; the published series uses the configured fixed rate.
func (e *Engine) countBMRSkips(skipped map[string]int) error {
	recs, err := e.store.ListRecordsByType(models.TypeBasalMetabolic)
	if err != nil {
		return err
	}
	for _, r := range recs {
		v, ok := bmrKcalPerDay(r.Payload())
		if !ok || recordInstant(r) == nil || v < bmrPlausibleMin || v > bmrPlausibleMax {
			skipped[models.TypeBasalMetabolic]++
		}
	}
	return nil
}

// bmrSeries publishes the configured fixed rate across the anchor span.
// With no anchor days at all the span collapses to today, so the baseline
// is still visible on an empty store.
func (e *Engine) bmrSeries(anchorDays []string) []DailyPoint {
	if len(anchorDays) == 0 {
		today := e.localDay(e.now())
		anchorDays = []string{today}
	}
	first, last := anchorDays[0], anchorDays[len(anchorDays)-1]
	var out []DailyPoint
	for _, d := range dayRange(first, last) {
		v := e.bmrKcalPerDay
		out = append(out, DailyPoint{Date: d, Value: &v, Measured: false})
	}
	return out
}

// applyIntakeCarry defaults intake on days after the latest logged entry to
// that entry's value, but only for days the burn series covers. Earlier
// gaps stay gaps: a stale value must never rewrite history.
func applyIntakeCarry(intake, totalCal map[string]float64) {
	var lastDay string
	for d := range intake {
		if d > lastDay {
			lastDay = d
		}
	}
	if lastDay == "" {
		return
	}
	lastVal := intake[lastDay]
	for day := range totalCal {
		if day > lastDay {
			intake[day] = lastVal
		}
	}
}

func unionDays(maps ...map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for d := range m {
			seen[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func scaledSeries(m map[string]float64, factor float64) []Point {
	scaled := make(map[string]float64, len(m))
	for d, v := range m {
		scaled[d] = v * factor
	}
	return sortedSeries(scaled)
}

func sourceOf(r *models.HealthRecord) string {
	if r.Source != nil {
		return *r.Source
	}
	return ""
}

// recordInstant picks the representative timestamp of a record: instant
// time, then range end, then range start.
func recordInstant(r *models.HealthRecord) *time.Time {
	if r.Time != nil {
		return r.Time
	}
	if r.EndTime != nil {
		return r.EndTime
	}
	return r.StartTime
}

func sampleTime(sample map[string]any, fallback time.Time) time.Time {
	raw, _ := sample["time"].(string)
	if raw == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fallback
	}
	return t
}
