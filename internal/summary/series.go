// ABOUTME: Series-building helpers for the aggregation engine.
// ABOUTME: Source collapsing, interval unions, carry-forward, moving averages.
package summary

import (
	"sort"
	"time"
)

// daySource keys per-day, per-source accumulation before the cross-source
// collapse. A device and a phone both reporting the same day must not sum.
type daySource struct {
	day    string
	source string
}

// maxAcrossSources collapses a per-(day,source) map to per-day maxima.
func maxAcrossSources(m map[daySource]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if cur, ok := out[k.day]; !ok || v > cur {
			out[k.day] = v
		}
	}
	return out
}

// dated pairs a value with the record timestamp that produced it, for
// latest-wins selection.
type dated struct {
	at    time.Time
	value float64
}

// latestWins keeps the newest observation per day.
func latestWins(m map[string]dated, day string, at time.Time, value float64) {
	if cur, ok := m[day]; ok && !at.After(cur.at) {
		return
	}
	m[day] = dated{at: at, value: value}
}

func datedValues(m map[string]dated) map[string]float64 {
	out := make(map[string]float64, len(m))
	for day, d := range m {
		out[day] = d.value
	}
	return out
}

// interval is a half-open time range used for sleep sessions.
type interval struct {
	start time.Time
	end   time.Time
}

// mergedMinutes unions overlapping intervals and returns total minutes.
func mergedMinutes(ivs []interval) float64 {
	if len(ivs) == 0 {
		return 0
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start.Before(ivs[j].start) })
	total := time.Duration(0)
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if !iv.start.After(cur.end) {
			if iv.end.After(cur.end) {
				cur.end = iv.end
			}
			continue
		}
		total += cur.end.Sub(cur.start)
		cur = iv
	}
	total += cur.end.Sub(cur.start)
	return total.Minutes()
}

// sortedSeries turns a day-keyed map into a date-ordered Point slice.
func sortedSeries(m map[string]float64) []Point {
	days := make([]string, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]Point, 0, len(days))
	for _, d := range days {
		v := m[d]
		out = append(out, Point{Date: d, Value: &v})
	}
	return out
}

// dayRange lists every calendar day from first to last inclusive.
func dayRange(first, last string) []string {
	start, err1 := time.Parse("2006-01-02", first)
	end, err2 := time.Parse("2006-01-02", last)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}

// fillSparse expands a day-keyed map over its full calendar span, leaving
// nil values on unmeasured days.
func fillSparse(m map[string]float64) []DailyPoint {
	if len(m) == 0 {
		return nil
	}
	first, last := spanOf(m)
	var out []DailyPoint
	for _, d := range dayRange(first, last) {
		if v, ok := m[d]; ok {
			vv := v
			out = append(out, DailyPoint{Date: d, Value: &vv, Measured: true})
		} else {
			out = append(out, DailyPoint{Date: d, Measured: false})
		}
	}
	return out
}

// fillCarryForward expands a day-keyed map over its full calendar span,
// carrying the last measured value across gaps.
func fillCarryForward(m map[string]float64) []DailyPoint {
	if len(m) == 0 {
		return nil
	}
	first, last := spanOf(m)
	var out []DailyPoint
	var carry *float64
	for _, d := range dayRange(first, last) {
		if v, ok := m[d]; ok {
			vv := v
			carry = &vv
			out = append(out, DailyPoint{Date: d, Value: &vv, Measured: true})
		} else {
			out = append(out, DailyPoint{Date: d, Value: carry, Measured: false})
		}
	}
	return out
}

func spanOf(m map[string]float64) (first, last string) {
	for d := range m {
		if first == "" || d < first {
			first = d
		}
		if d > last {
			last = d
		}
	}
	return first, last
}

// minWindowPoints keeps a moving average from over-reacting to a sparse
// start of series.
const minWindowPoints = 3

// movingAverage computes a trailing window average over the non-nil values
// of the series, requiring minWindowPoints values before emitting.
func movingAverage(points []DailyPoint, window int) []*float64 {
	out := make([]*float64, len(points))
	for i := range points {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, n := 0.0, 0
		for j := lo; j <= i; j++ {
			if points[j].Value != nil {
				sum += *points[j].Value
				n++
			}
		}
		if n >= minWindowPoints {
			avg := sum / float64(n)
			out[i] = &avg
		}
	}
	return out
}

// tailAverages returns the average over the last n calendar days of a
// daily series and over the n days before those, with the count of measured
// values in each. Used for recent-vs-previous comparisons in insights.
func tailAverages(points []DailyPoint, n int) (recent, prev float64, recentN, prevN int) {
	take := func(lo, hi int) (float64, int) {
		sum, cnt := 0.0, 0
		for i := lo; i < hi; i++ {
			if i >= 0 && i < len(points) && points[i].Value != nil {
				sum += *points[i].Value
				cnt++
			}
		}
		if cnt == 0 {
			return 0, 0
		}
		return sum / float64(cnt), cnt
	}
	recent, recentN = take(len(points)-n, len(points))
	prev, prevN = take(len(points)-2*n, len(points)-n)
	return recent, prev, recentN, prevN
}
