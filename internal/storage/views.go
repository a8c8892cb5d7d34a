package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReportView is one rendered report as recorded by the view worker.
type ReportView struct {
	ReportType string
	Year       *int
	Charts     int
	ViewedAt   time.Time
}

// ViewCount aggregates views of one report selection.
type ViewCount struct {
	ReportType string
	Year       *int
	Views      int
	LastViewed time.Time
}

// RecordView stores v. Timestamps are kept in milliseconds.
func (r *SQLiteRepository) RecordView(ctx context.Context, v ReportView) error {
	var year sql.NullInt64
	if v.Year != nil {
		year = sql.NullInt64{Int64: int64(*v.Year), Valid: true}
	}
	viewedAt := v.ViewedAt
	if viewedAt.IsZero() {
		viewedAt = time.Now()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO report_views (report_type, year, charts, viewed_at)
		VALUES (?, ?, ?, ?)`,
		v.ReportType, year, v.Charts, viewedAt.UnixMilli()); err != nil {
		return fmt.Errorf("insert report view: %w", err)
	}
	return nil
}

// ViewCounts returns views per selection, most viewed first.
func (r *SQLiteRepository) ViewCounts(ctx context.Context) ([]ViewCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT report_type, year, COUNT(*) AS views, MAX(viewed_at)
		FROM report_views
		GROUP BY report_type, year
		ORDER BY views DESC, report_type, year`)
	if err != nil {
		return nil, fmt.Errorf("query report views: %w", err)
	}
	defer rows.Close()

	var counts []ViewCount
	for rows.Next() {
		var (
			c    ViewCount
			year sql.NullInt64
			last int64
		)
		if err := rows.Scan(&c.ReportType, &year, &c.Views, &last); err != nil {
			return nil, fmt.Errorf("scan report view: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			c.Year = &y
		}
		c.LastViewed = time.UnixMilli(last).UTC()
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report views: %w", err)
	}
	return counts, nil
}
