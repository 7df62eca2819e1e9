// ABOUTME: Health record and sync batch models for device-pushed data.
// ABOUTME: Records are keyed by a content-derived record key, not a UUID.
package models

import (
	"encoding/json"
	"time"
)

// Record types pushed by the device. The set is open-ended; these constants
// cover the types the aggregation engine understands.
const (
	TypeSteps          = "StepsRecord"
	TypeWeight         = "WeightRecord"
	TypeDistance       = "DistanceRecord"
	TypeActiveCalories = "ActiveCaloriesBurnedRecord"
	TypeTotalCalories  = "TotalCaloriesBurnedRecord"
	TypeSleepSession   = "SleepSessionRecord"
	TypeSpeed          = "SpeedRecord"
	TypeHeartRate      = "HeartRateRecord"
	TypeRestingHR      = "RestingHeartRateRecord"
	TypeOxygenSat      = "OxygenSaturationRecord"
	TypeBasalMetabolic = "BasalMetabolicRateRecord"
	TypeBodyFat        = "BodyFatRecord"
)

// RecordEnvelope is a single health record as received from the device.
// Payload is the raw provider-specific body and is stored opaquely.
type RecordEnvelope struct {
	Type             string         `json:"type"`
	RecordID         string         `json:"recordId,omitempty"`
	RecordKey        string         `json:"recordKey,omitempty"`
	Source           string         `json:"source,omitempty"`
	StartTime        *time.Time     `json:"startTime,omitempty"`
	EndTime          *time.Time     `json:"endTime,omitempty"`
	Time             *time.Time     `json:"time,omitempty"`
	LastModifiedTime *time.Time     `json:"lastModifiedTime,omitempty"`
	Unit             string         `json:"unit,omitempty"`
	Payload          map[string]any `json:"payload"`
}

// SyncBatch is the envelope of one /api/sync call.
type SyncBatch struct {
	DeviceID   string           `json:"deviceId"`
	SyncID     string           `json:"syncId"`
	SyncedAt   time.Time        `json:"syncedAt"`
	RangeStart time.Time        `json:"rangeStart"`
	RangeEnd   time.Time        `json:"rangeEnd"`
	Records    []RecordEnvelope `json:"records"`
}

// HealthRecord is a stored health record.
type HealthRecord struct {
	RecordKey        string
	DeviceID         string
	Type             string
	RecordID         *string
	Source           *string
	StartTime        *time.Time
	EndTime          *time.Time
	Time             *time.Time
	LastModifiedTime *time.Time
	Unit             *string
	PayloadJSON      string
	IngestedAt       time.Time
}

// Payload decodes the stored payload JSON. Returns nil on malformed data;
// aggregation treats that as a skippable row.
func (r *HealthRecord) Payload() map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(r.PayloadJSON), &out); err != nil {
		return nil
	}
	return out
}

// SyncRun records one sync call and its outcome counts.
type SyncRun struct {
	SyncID        string
	DeviceID      string
	SyncedAt      time.Time
	RangeStart    time.Time
	RangeEnd      time.Time
	ReceivedAt    time.Time
	RecordCount   int
	UpsertedCount int
	SkippedCount  int
}

// SyncResult is what a sync call reports back to the device.
type SyncResult struct {
	Accepted      bool `json:"accepted"`
	UpsertedCount int  `json:"upsertedCount"`
	SkippedCount  int  `json:"skippedCount"`
}
