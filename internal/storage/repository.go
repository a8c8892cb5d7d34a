package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"autosales/internal/core"
	"autosales/internal/dataset"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ dataset.SalesReader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements dataset.SalesReader, returning rows in import order.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, month, automobile_sales, vehicle_type,
		       advertising_expenditure, unemployment_rate, recession
		FROM sales
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var records []core.SalesRecord
	for rows.Next() {
		var (
			rec       core.SalesRecord
			recession int64
		)
		if err := rows.Scan(&rec.Year, &rec.Month, &rec.AutomobileSales, &rec.VehicleType,
			&rec.AdvertisingExpenditure, &rec.UnemploymentRate, &recession); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		rec.Recession = recession == 1
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales rows: %w", err)
	}

	slog.InfoContext(ctx, "Sales loaded from SQLite", "records", len(records))
	return core.NewTable(records), nil
}

// ReplaceAll swaps the stored dataset for records in a single transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.SalesRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales`); err != nil {
		return 0, fmt.Errorf("clear sales: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (year, month, automobile_sales, vehicle_type,
		                   advertising_expenditure, unemployment_rate, recession)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		recession := 0
		if rec.Recession {
			recession = 1
		}
		if _, err := stmt.ExecContext(ctx, rec.Year, rec.Month, rec.AutomobileSales, rec.VehicleType,
			rec.AdvertisingExpenditure, rec.UnemploymentRate, recession); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(records), nil
}

// Count returns the number of stored records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}
