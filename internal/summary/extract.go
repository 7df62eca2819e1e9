// ABOUTME: Payload value extraction for the aggregation engine.
// ABOUTME: Recursive key search, unit conversions, and percent normalization.
package summary

import (
	"encoding/json"
	"math"
)

// maxSearchDepth bounds the recursive payload search. Connect payloads nest
// values a couple of levels deep at most.
const maxSearchDepth = 6

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

// findNumber walks the payload looking for the first numeric value stored
// under any of the wanted keys, at any nesting level. Keys at shallower
// depth win; within a level, wanted-key order wins.
func findNumber(payload map[string]any, keys ...string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	level := []map[string]any{payload}
	for depth := 0; depth < maxSearchDepth && len(level) > 0; depth++ {
		for _, m := range level {
			for _, k := range keys {
				if v, ok := m[k]; ok {
					if f, ok := toFloat(v); ok {
						return f, true
					}
				}
			}
		}
		var next []map[string]any
		for _, m := range level {
			for _, v := range m {
				switch child := v.(type) {
				case map[string]any:
					next = append(next, child)
				case []any:
					for _, e := range child {
						if cm, ok := e.(map[string]any); ok {
							next = append(next, cm)
						}
					}
				}
			}
		}
		level = next
	}
	return 0, false
}

const kmPerMile = 1.609344

// distanceKm pulls a distance out of a payload, converting meters or miles.
func distanceKm(payload map[string]any) (float64, bool) {
	if v, ok := findNumber(payload, "inKilometers", "kilometers", "km"); ok {
		return v, true
	}
	if v, ok := findNumber(payload, "inMeters", "meters", "length"); ok {
		return v / 1000.0, true
	}
	if v, ok := findNumber(payload, "inMiles", "miles"); ok {
		return v * kmPerMile, true
	}
	return 0, false
}

// speedKmh pulls a speed out of a sample map, normalizing to km/h.
func speedKmh(sample map[string]any) (float64, bool) {
	if v, ok := findNumber(sample, "inKilometersPerHour", "kilometersPerHour"); ok {
		return v, true
	}
	if v, ok := findNumber(sample, "inMetersPerSecond", "metersPerSecond"); ok {
		return v * 3.6, true
	}
	if v, ok := findNumber(sample, "inMilesPerHour", "milesPerHour"); ok {
		return v * kmPerMile, true
	}
	return 0, false
}

// secondsPerDay / joulesPerKilocalorie for the watts-based BMR form.
const (
	secondsPerDay        = 86400.0
	joulesPerKilocalorie = 4184.0
)

// bmrKcalPerDay pulls a basal metabolic rate out of a payload, converting
// a power reading in watts to kcal/day when that is all the record carries.
func bmrKcalPerDay(payload map[string]any) (float64, bool) {
	if v, ok := findNumber(payload, "inKilocaloriesPerDay", "kilocaloriesPerDay", "kcalPerDay"); ok {
		return v, true
	}
	if v, ok := findNumber(payload, "inWatts", "watts"); ok {
		return v * secondsPerDay / joulesPerKilocalorie, true
	}
	return 0, false
}

// toPercent normalizes ratio-or-percent readings. Values in [0, 1.2] are
// treated as ratios and scaled by 100; SpO2 readings never legitimately sit
// in that range as percentages. Anything outside passes through untouched.
func toPercent(v float64) float64 {
	if v >= 0 && v <= 1.2 {
		return v * 100
	}
	return v
}
