// ABOUTME: Output types for the aggregation engine.
// ABOUTME: Daily series, diet trend, and advisory insights.
package summary

import "strings"

// Point is one day of a date-keyed series. Value is nil for days present in
// a daily series but without a measurement.
type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// DailyPoint is one day of a gap-filled daily series. Measured marks days
// with a real measurement as opposed to filled (nil or carried) values.
type DailyPoint struct {
	Date     string   `json:"date"`
	Value    *float64 `json:"value"`
	Measured bool     `json:"measured"`
}

// Trend categories derived from the weight MA7 delta.
const (
	TrendGain     = "gain"
	TrendPlateau  = "plateau"
	TrendSlowLoss = "slow_loss"
	TrendLoss     = "loss"
	TrendUnknown  = "unknown"
)

// Diet is the weight-trend assessment.
type Diet struct {
	Plateau                    bool     `json:"plateau"`
	Trend                      string   `json:"trend"`
	MA7Delta7d                 *float64 `json:"ma7Delta7d"`
	EstimatedDeficitKcalPerDay *float64 `json:"estimatedDeficitKcalPerDay"`
	RawDeltaFromStart          *float64 `json:"rawDeltaFromStart"`
}

// Insight severity levels.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// Insight is one advisory note. Consumers should treat the list as a set;
// only rough ordering is guaranteed.
type Insight struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Summary is the full aggregation output, recomputed from store contents on
// every call.
type Summary struct {
	TotalRecords int            `json:"totalRecords"`
	ByType       map[string]int `json:"byType"`

	StepsByDate               []Point `json:"stepsByDate"`
	DistanceKmByDate          []Point `json:"distanceKmByDate"`
	WeightByDate              []Point `json:"weightByDate"`
	ActiveCaloriesByDate      []Point `json:"activeCaloriesByDate"`
	TotalCaloriesByDate       []Point `json:"totalCaloriesByDate"`
	IntakeCaloriesByDate      []Point `json:"intakeCaloriesByDate"`
	CalorieBalanceByDate      []Point `json:"calorieBalanceByDate"`
	SleepMinutesByDate        []Point `json:"sleepMinutesByDate"`
	SleepHoursByDate          []Point `json:"sleepHoursByDate"`
	SpeedKmhByDate            []Point `json:"speedKmhByDate"`
	HeartRateBpmByDate        []Point `json:"heartRateBpmByDate"`
	RestingHeartRateBpmByDate []Point `json:"restingHeartRateBpmByDate"`
	OxygenSaturationPctByDate []Point `json:"oxygenSaturationPctByDate"`
	BodyFatPctByDate          []Point `json:"bodyFatPctByDate"`

	WeightDaily                  []DailyPoint `json:"weightDaily"`
	BasalMetabolicRateKcalByDate []DailyPoint `json:"basalMetabolicRateKcalByDate"`

	Diet     *Diet     `json:"diet"`
	Insights []Insight `json:"insights"`

	// SkippedRows counts raw rows dropped per record type during scans
	// (unparseable timestamps or payloads). Diagnostic only.
	SkippedRows map[string]int `json:"skippedRows"`
}

// HasInsight reports whether an insight with the given level and message
// substring is present.
func (s *Summary) HasInsight(level, substr string) bool {
	for _, in := range s.Insights {
		if in.Level == level && strings.Contains(in.Message, substr) {
			return true
		}
	}
	return false
}
