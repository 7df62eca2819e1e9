// ABOUTME: Persistence for generated reports.
// ABOUTME: Listings return a 200-character content preview only.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/hcbridge/internal/models"
)

// ReportPreview is a report listing row with truncated content.
type ReportPreview struct {
	ID         int64     `json:"id"`
	ReportDate string    `json:"report_date"`
	ReportType string    `json:"report_type"`
	CreatedAt  time.Time `json:"created_at"`
	Preview    string    `json:"preview"`
}

// SaveReport persists a generated report and returns it with its id.
func (d *DB) SaveReport(r *models.SavedReport) (*models.SavedReport, error) {
	if !models.IsValidReportType(r.ReportType) {
		return nil, models.Invalid("report_type", "must be one of daily, weekly, monthly")
	}
	r.CreatedAt = time.Now()
	res, err := d.db.Exec(`
		INSERT INTO ai_reports(report_date, report_type, prompt_used, content, created_at)
		VALUES (?,?,?,?,?)
	`, r.ReportDate, r.ReportType, r.PromptUsed, r.Content, iso(r.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("report id: %w", err)
	}
	return d.GetReport(id)
}

// GetReport fetches a full report by id, or ErrNotFound.
func (d *DB) GetReport(id int64) (*models.SavedReport, error) {
	row := d.db.QueryRow(`
		SELECT id, report_date, report_type, prompt_used, content, created_at
		FROM ai_reports WHERE id = ?
	`, id)

	var r models.SavedReport
	var createdAt string
	err := row.Scan(&r.ID, &r.ReportDate, &r.ReportType, &r.PromptUsed, &r.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &r, nil
}

// ListReports returns recent reports, newest first, optionally filtered by
// type, with content truncated to a preview.
func (d *DB) ListReports(reportType string, limit int) ([]*ReportPreview, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, report_date, report_type, created_at, SUBSTR(content, 1, 200)
		FROM ai_reports`
	var args []any
	if reportType != "" {
		query += " WHERE report_type = ?"
		args = append(args, reportType)
	}
	query += " ORDER BY report_date DESC, created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*ReportPreview
	for rows.Next() {
		var p ReportPreview
		var createdAt string
		if err := rows.Scan(&p.ID, &p.ReportDate, &p.ReportType, &createdAt, &p.Preview); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeleteReport removes a report by id, or returns ErrNotFound.
func (d *DB) DeleteReport(id int64) error {
	res, err := d.db.Exec(`DELETE FROM ai_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
