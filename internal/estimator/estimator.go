// ABOUTME: Heuristic micronutrient estimation for meals without labels.
// ABOUTME: Prioritizes "no missing nutrients" over precision.
package estimator

import (
	"encoding/json"
	"math"
	"strings"
)

// basePer1000Kcal is the nutrient density of a typical mixed meal per
// 1000 kcal. Values are coarse defaults to reduce false "not consumed"
// diagnostics.
var basePer1000Kcal = map[string]float64{
	// macro-related
	"sugar_g":         30,
	"dietary_fiber_g": 12,

	// minerals
	"sodium_mg":      1400,
	"potassium_mg":   1700,
	"calcium_mg":     250,
	"magnesium_mg":   120,
	"phosphorus_mg":  450,
	"iron_mg":        4,
	"zinc_mg":        5,
	"copper_mg":      0.6,
	"selenium_mcg":   35,
	"chromium_mcg":   20,
	"manganese_mg":   1.2,
	"iodine_mcg":     90,
	"molybdenum_mcg": 25,

	// vitamins
	"vitamin_a_mcg":       350,
	"vitamin_b1_mg":       0.5,
	"vitamin_b2_mg":       0.6,
	"vitamin_b6_mg":       0.7,
	"vitamin_b12_mcg":     2,
	"niacin_mg":           7,
	"pantothenic_acid_mg": 2.5,
	"biotin_mcg":          20,
	"folate_mcg":          180,
	"vitamin_c_mg":        50,
	"vitamin_d_mcg":       3,
	"vitamin_e_mg":        4,
	"vitamin_k_mcg":       60,

	// lipids and others
	"epa_mg":          30,
	"dha_mg":          40,
	"omega3_mg":       180,
	"omega6_mg":       5000,
	"cholesterol_mg":  180,
	"saturated_fat_g": 8,
}

// keywordBonus adds fixed amounts when the label matches a keyword group.
// Bonuses are additive and multiple groups may match.
var keywordBonus = []struct {
	keywords []string
	bonus    map[string]float64
}{
	{[]string{"potato", "fries", "fried"}, map[string]float64{"sodium_mg": 200, "potassium_mg": 300, "vitamin_c_mg": 10, "dietary_fiber_g": 2}},
	{[]string{"miso", "ramen", "soup"}, map[string]float64{"sodium_mg": 600, "potassium_mg": 120}},
	{[]string{"fish", "salmon", "mackerel", "sashimi"}, map[string]float64{"vitamin_d_mcg": 5, "omega3_mg": 300, "epa_mg": 80, "dha_mg": 120}},
	{[]string{"beer", "highball", "sake"}, map[string]float64{"alcohol_g": 20}},
	{[]string{"coffee", "energy", "tea"}, map[string]float64{"caffeine_mg": 70}},
}

// EstimateMicros returns estimated micronutrients for a labeled food.
// Without a kcal anchor (nil or <= 0) there is nothing to scale from and the
// result is empty.
func EstimateMicros(label string, kcal, proteinG, fatG, carbsG *float64) map[string]float64 {
	if kcal == nil || *kcal <= 0 {
		return map[string]float64{}
	}

	factor := *kcal / 1000.0
	out := make(map[string]float64, len(basePer1000Kcal))
	for k, v := range basePer1000Kcal {
		out[k] = v * factor
	}

	// Provided macros are rough anchors: take the larger of the kcal-scaled
	// baseline and the macro-derived value.
	if carbsG != nil && *carbsG > 0 {
		c := *carbsG
		out["sugar_g"] = math.Max(out["sugar_g"], math.Min(c*0.45, c))
		out["dietary_fiber_g"] = math.Max(out["dietary_fiber_g"], c*0.12)
	}
	if fatG != nil && *fatG > 0 {
		out["saturated_fat_g"] = math.Max(out["saturated_fat_g"], *fatG*0.35)
	}

	l := strings.ToLower(strings.TrimSpace(label))
	for _, group := range keywordBonus {
		for _, kw := range group.keywords {
			if strings.Contains(l, kw) {
				for nk, nv := range group.bonus {
					out[nk] += nv
				}
				break
			}
		}
	}

	// Salt equivalent from sodium (approximation).
	if sodium, ok := out["sodium_mg"]; ok {
		out["salt_equivalent_g"] = sodium * 2.54 / 1000.0
	}

	// Keep omega3 coherent when EPA/DHA bonuses pushed past the baseline.
	out["omega3_mg"] = math.Max(out["omega3_mg"], out["epa_mg"]+out["dha_mg"])

	for k, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			delete(out, k)
		}
	}
	return out
}

// MergeWithEstimate merges estimated and explicitly provided micros.
// The estimate runs first to maximize nutrient coverage; provided numeric
// values then override estimated ones. Returns nil when the merged result
// has no entries.
func MergeWithEstimate(label string, kcal, proteinG, fatG, carbsG *float64, provided map[string]any) map[string]float64 {
	out := EstimateMicros(label, kcal, proteinG, fatG, carbsG)
	for k, raw := range provided {
		if v, ok := toFloat(raw); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
