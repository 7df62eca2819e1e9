// ABOUTME: Raw record export in CSV form.
// ABOUTME: Column layout matches the health_records table for portability.
package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ExportRecordsCSV renders all health records (optionally one type) as CSV
// ordered by ingestion time.
func (d *DB) ExportRecordsCSV(typeFilter string) ([]byte, error) {
	records, err := d.ListAllRecords(typeFilter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"record_key", "device_id", "type", "record_id", "source",
		"start_time", "end_time", "time", "last_modified_time", "unit",
		"payload_json", "ingested_at",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	for _, r := range records {
		row := []string{
			r.RecordKey,
			r.DeviceID,
			r.Type,
			str(r.RecordID),
			str(r.Source),
			str(isoPtr(r.StartTime)),
			str(isoPtr(r.EndTime)),
			str(isoPtr(r.Time)),
			str(isoPtr(r.LastModifiedTime)),
			str(r.Unit),
			r.PayloadJSON,
			iso(r.IngestedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
