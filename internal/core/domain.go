package core

import (
	"slices"
)

type (
	// SalesRecord is one row of the historical automobile sales dataset.
	SalesRecord struct {
		Year                   int
		Month                  string
		AutomobileSales        float64
		VehicleType            string
		AdvertisingExpenditure float64
		UnemploymentRate       float64
		Recession              bool
	}

	// Table is an immutable, ordered collection of sales records.
	// It is built once and shared read-only; every accessor copies.
	Table struct {
		records []SalesRecord
	}
)

// NewTable copies records into a new immutable table.
func NewTable(records []SalesRecord) *Table {
	return &Table{records: slices.Clone(records)}
}

// Len returns the number of records. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the table rows in load order.
func (t *Table) Records() []SalesRecord {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(SalesRecord) bool) *Table {
	out := &Table{}
	if t == nil {
		return out
	}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Years returns the distinct years present in the table, ascending.
func (t *Table) Years() []int {
	if t == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var years []int
	for _, r := range t.records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	slices.Sort(years)
	return years
}

// InRecession reports whether the record belongs to a recession period.
func InRecession(r SalesRecord) bool { return r.Recession }

// InYear returns a predicate matching records of the given year.
func InYear(year int) func(SalesRecord) bool {
	return func(r SalesRecord) bool { return r.Year == year }
}
