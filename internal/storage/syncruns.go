// ABOUTME: Sync run registry operations.
// ABOUTME: Insert-if-absent on syncId, counts updated after batch processing.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// BeginSyncRun registers a sync call. Re-registering the same syncId is a
// no-op so retried batches do not create duplicate runs.
func (d *DB) BeginSyncRun(run *models.SyncRun) error {
	_, err := d.db.Exec(`
		INSERT OR IGNORE INTO sync_runs(
		  sync_id, device_id, synced_at, range_start, range_end,
		  received_at, record_count
		) VALUES (?,?,?,?,?,?,?)
	`,
		run.SyncID,
		run.DeviceID,
		iso(run.SyncedAt),
		iso(run.RangeStart),
		iso(run.RangeEnd),
		iso(run.ReceivedAt),
		run.RecordCount,
	)
	if err != nil {
		return fmt.Errorf("begin sync run: %w", err)
	}
	return nil
}

// FinishSyncRun records the final upserted/skipped counts for a run.
func (d *DB) FinishSyncRun(syncID string, upserted, skipped int) error {
	_, err := d.db.Exec(
		`UPDATE sync_runs SET upserted_count = ?, skipped_count = ? WHERE sync_id = ?`,
		upserted, skipped, syncID,
	)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

// LastSyncRun returns the most recently received run, or ErrNotFound.
func (d *DB) LastSyncRun() (*models.SyncRun, error) {
	row := d.db.QueryRow(`
		SELECT sync_id, device_id, synced_at, range_start, range_end,
		       received_at, record_count, upserted_count, skipped_count
		FROM sync_runs ORDER BY received_at DESC LIMIT 1
	`)

	var run models.SyncRun
	var syncedAt, rangeStart, rangeEnd, receivedAt string
	err := row.Scan(&run.SyncID, &run.DeviceID, &syncedAt, &rangeStart, &rangeEnd,
		&receivedAt, &run.RecordCount, &run.UpsertedCount, &run.SkippedCount)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last sync run: %w", err)
	}

	run.SyncedAt, _ = time.Parse(time.RFC3339Nano, syncedAt)
	run.RangeStart, _ = time.Parse(time.RFC3339Nano, rangeStart)
	run.RangeEnd, _ = time.Parse(time.RFC3339Nano, rangeEnd)
	run.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt)
	return &run, nil
}
