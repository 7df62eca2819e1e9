// ABOUTME: Append-only idempotency ledger for automation ingest events.
// ABOUTME: Presence of an event id makes re-ingestion a no-op.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/hcbridge/internal/models"
)

// HasIngestEvent reports whether an event id is already in the ledger.
func (d *DB) HasIngestEvent(eventID string) (bool, error) {
	var one int
	err := d.db.QueryRow(`SELECT 1 FROM ingest_events WHERE event_id = ?`, eventID).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check ingest event: %w", err)
}

// InsertIngestEvent appends a ledger row. A primary-key conflict means a
// concurrent ingest won the race; that is reported as ok=false with no error
// so the caller can surface it as a duplicate.
func (d *DB) InsertIngestEvent(ev *models.IngestedEvent) (bool, error) {
	_, err := d.db.Exec(`
		INSERT INTO ingest_events(event_id, ingested_at, source, payload_hash)
		VALUES (?,?,?,?)
	`, ev.EventID, iso(ev.IngestedAt), ev.Source, ev.PayloadHash)
	if err != nil {
		if isConstraintErr(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert ingest event: %w", err)
	}
	return true, nil
}

// isConstraintErr matches SQLite unique/primary-key violations. modernc's
// driver surfaces them as wrapped errors carrying the SQLITE_CONSTRAINT text.
func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "constraint") || strings.Contains(msg, "UNIQUE")
}
