// Package csvfile loads the sales dataset from a CSV file on disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"autosales/internal/core"
	"autosales/internal/dataset"
)

// DefaultPath is the dataset location relative to the working directory.
const DefaultPath = "historical_automobile_sales.csv"

type Store struct {
	path string
}

var _ dataset.SalesReader = (*Store)(nil)

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the file the store reads from.
func (s *Store) Path() string { return s.path }

// Load reads and parses the whole file. Any read or parse error aborts the
// load; there is no partial table.
func (s *Store) Load(ctx context.Context) (*core.Table, error) {
	rows, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	records, err := dataset.ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	slog.DebugContext(ctx, "Sales CSV parsed", "path", s.path, "records", len(records))
	return core.NewTable(records), nil
}

// ReadFile returns the raw CSV rows of path, header included.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
