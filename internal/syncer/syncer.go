// ABOUTME: Applies device sync batches to the record store.
// ABOUTME: Per-record tolerance; one bad record never rejects the batch.
package syncer

import (
	"time"

	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/recordkey"
	"github.com/harperreed/hcbridge/internal/storage"
)

// Syncer turns sync batches into record upserts and run bookkeeping.
type Syncer struct {
	store *storage.DB
	now   func() time.Time
}

func New(store *storage.DB) *Syncer {
	return &Syncer{store: store, now: time.Now}
}

// Apply processes one sync batch. Records missing a type or failing to
// store are skipped and counted; everything else is upserted. Re-sending a
// batch with the same syncId re-registers nothing and the record upserts
// converge on the same rows.
func (s *Syncer) Apply(batch *models.SyncBatch) (*models.SyncResult, error) {
	if batch.DeviceID == "" {
		return nil, models.Invalid("deviceId", "required")
	}
	if batch.SyncID == "" {
		return nil, models.Invalid("syncId", "required")
	}

	receivedAt := s.now().UTC()
	run := &models.SyncRun{
		SyncID:      batch.SyncID,
		DeviceID:    batch.DeviceID,
		SyncedAt:    batch.SyncedAt,
		RangeStart:  batch.RangeStart,
		RangeEnd:    batch.RangeEnd,
		ReceivedAt:  receivedAt,
		RecordCount: len(batch.Records),
	}
	if err := s.store.BeginSyncRun(run); err != nil {
		return nil, err
	}

	upserted, skipped := 0, 0
	for _, env := range batch.Records {
		rec, ok := s.toRecord(batch.DeviceID, env, receivedAt)
		if !ok {
			skipped++
			continue
		}
		if err := s.store.UpsertRecord(rec); err != nil {
			skipped++
			continue
		}
		upserted++
	}

	if err := s.store.FinishSyncRun(batch.SyncID, upserted, skipped); err != nil {
		return nil, err
	}
	return &models.SyncResult{Accepted: true, UpsertedCount: upserted, SkippedCount: skipped}, nil
}

// toRecord validates one envelope and fills in the derived record key when
// the device did not send one.
func (s *Syncer) toRecord(deviceID string, env models.RecordEnvelope, ingestedAt time.Time) (*models.HealthRecord, bool) {
	if env.Type == "" {
		return nil, false
	}
	key := env.RecordKey
	if key == "" {
		key = recordkey.DeriveKey(deviceID, env)
	}

	payloadJSON := "{}"
	if env.Payload != nil {
		payloadJSON = recordkey.CanonicalJSON(env.Payload)
	}

	rec := &models.HealthRecord{
		RecordKey:        key,
		DeviceID:         deviceID,
		Type:             env.Type,
		StartTime:        env.StartTime,
		EndTime:          env.EndTime,
		Time:             env.Time,
		LastModifiedTime: env.LastModifiedTime,
		PayloadJSON:      payloadJSON,
		IngestedAt:       ingestedAt,
	}
	if env.RecordID != "" {
		rec.RecordID = &env.RecordID
	}
	if env.Source != "" {
		rec.Source = &env.Source
	}
	if env.Unit != "" {
		rec.Unit = &env.Unit
	}
	return rec, true
}
