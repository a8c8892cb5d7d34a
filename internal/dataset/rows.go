package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"autosales/internal/core"
)

// Column headers of the historical sales dataset. Other columns are ignored.
const (
	ColYear         = "Year"
	ColMonth        = "Month"
	ColSales        = "Automobile_Sales"
	ColVehicleType  = "Vehicle_Type"
	ColAdvertising  = "Advertising_Expenditure"
	ColUnemployment = "unemployment_rate"
	ColRecession    = "Recession"
)

// RequiredColumns lists the headers every source must provide.
var RequiredColumns = []string{ColYear, ColMonth, ColSales, ColVehicleType, ColAdvertising, ColUnemployment, ColRecession}

var ErrMissingColumn = errors.New("missing required column")

// ParseRows converts a header row followed by data rows into sales records.
// Blank lines are skipped; short rows read missing cells as empty.
func ParseRows(rows [][]string) ([]core.SalesRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumn)
	}
	cols, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]core.SalesRecord, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		// line numbers are 1-based and count the header
		rec, err := parseRecord(row, cols, i+1)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	return idx, nil
}

func parseRecord(row []string, cols map[string]int, line int) (core.SalesRecord, error) {
	var (
		rec core.SalesRecord
		err error
	)
	cell := func(name string) string { return strings.TrimSpace(safeGet(row, cols[name])) }

	if rec.Year, err = parseInt(cell(ColYear)); err != nil {
		return rec, cellError(line, ColYear, err)
	}
	rec.Month = cell(ColMonth)
	if rec.AutomobileSales, err = parseFloat(cell(ColSales)); err != nil {
		return rec, cellError(line, ColSales, err)
	}
	rec.VehicleType = cell(ColVehicleType)
	if rec.AdvertisingExpenditure, err = parseFloat(cell(ColAdvertising)); err != nil {
		return rec, cellError(line, ColAdvertising, err)
	}
	if rec.UnemploymentRate, err = parseFloat(cell(ColUnemployment)); err != nil {
		return rec, cellError(line, ColUnemployment, err)
	}
	if rec.Recession, err = parseFlag(cell(ColRecession)); err != nil {
		return rec, cellError(line, ColRecession, err)
	}
	return rec, nil
}

func cellError(line int, col string, err error) error {
	return fmt.Errorf("line %d column %s: %w", line, col, err)
}

// parseInt accepts "2001" and float spellings such as "2001.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "yes":
		return true, nil
	case "0", "0.0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid recession flag %q", s)
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
