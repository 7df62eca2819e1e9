// ABOUTME: Health record upsert and query operations.
// ABOUTME: Primary-key conflicts merge payload/lastModified/ingestedAt.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// UpsertRecord stores a health record, merging on record_key conflict.
// The original key and device binding are preserved on merge; only the
// payload, last_modified_time, unit and ingested_at are overwritten.
func (d *DB) UpsertRecord(r *models.HealthRecord) error {
	if r.Type == "" {
		return models.Invalid("type", "required")
	}
	_, err := d.db.Exec(`
		INSERT INTO health_records(
		  record_key, device_id, type, record_id, source,
		  start_time, end_time, time, last_modified_time, unit,
		  payload_json, ingested_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(record_key) DO UPDATE SET
		  payload_json = excluded.payload_json,
		  last_modified_time = excluded.last_modified_time,
		  unit = excluded.unit,
		  ingested_at = excluded.ingested_at
	`,
		r.RecordKey,
		r.DeviceID,
		r.Type,
		r.RecordID,
		r.Source,
		isoPtr(r.StartTime),
		isoPtr(r.EndTime),
		isoPtr(r.Time),
		isoPtr(r.LastModifiedTime),
		r.Unit,
		r.PayloadJSON,
		iso(r.IngestedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by its record key.
func (d *DB) GetRecord(recordKey string) (*models.HealthRecord, error) {
	row := d.db.QueryRow(`
		SELECT record_key, device_id, type, record_id, source,
		       start_time, end_time, time, last_modified_time, unit,
		       payload_json, ingested_at
		FROM health_records WHERE record_key = ?
	`, recordKey)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	return r, err
}

// ListRecordsByType returns all records of one type, for aggregation scans.
func (d *DB) ListRecordsByType(recordType string) ([]*models.HealthRecord, error) {
	rows, err := d.db.Query(`
		SELECT record_key, device_id, type, record_id, source,
		       start_time, end_time, time, last_modified_time, unit,
		       payload_json, ingested_at
		FROM health_records WHERE type = ?
	`, recordType)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*models.HealthRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAllRecords returns every record ordered by ingestion time, optionally
// filtered by type. Used by the CSV export.
func (d *DB) ListAllRecords(typeFilter string) ([]*models.HealthRecord, error) {
	query := `
		SELECT record_key, device_id, type, record_id, source,
		       start_time, end_time, time, last_modified_time, unit,
		       payload_json, ingested_at
		FROM health_records`
	var args []any
	if typeFilter != "" {
		query += " WHERE type = ?"
		args = append(args, typeFilter)
	}
	query += " ORDER BY ingested_at ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*models.HealthRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecords returns the total number of stored records.
func (d *DB) CountRecords() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM health_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// CountRecordsByType returns record counts keyed by record type.
func (d *DB) CountRecordsByType() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT type, COUNT(*) FROM health_records GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count records by type: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var t string
		var c int
		if err := rows.Scan(&t, &c); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		out[t] = c
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.HealthRecord, error) {
	var r models.HealthRecord
	var recordID, source, startTime, endTime, at, lastMod, unit sql.NullString
	var ingestedAt string

	err := row.Scan(&r.RecordKey, &r.DeviceID, &r.Type, &recordID, &source,
		&startTime, &endTime, &at, &lastMod, &unit, &r.PayloadJSON, &ingestedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	r.RecordID = nullStr(recordID)
	r.Source = nullStr(source)
	r.StartTime = parseISOPtr(startTime)
	r.EndTime = parseISOPtr(endTime)
	r.Time = parseISOPtr(at)
	r.LastModifiedTime = parseISOPtr(lastMod)
	r.Unit = nullStr(unit)
	r.IngestedAt, _ = time.Parse(time.RFC3339Nano, ingestedAt)
	return &r, nil
}

// iso formats a timestamp for storage (UTC, RFC3339 with sub-second precision).
func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isoPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := iso(*t)
	return &s
}

func parseISOPtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
