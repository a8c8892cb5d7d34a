package core

import (
	"cmp"
	"slices"
)

// Aggregation selects how the values of a group are combined.
type Aggregation int

const (
	Mean Aggregation = iota
	Sum
)

func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "mean"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// Group is one group-by result row.
type Group[K comparable] struct {
	Key   K
	Value float64
	Count int
}

// GroupBy partitions the table by key, combines value over each partition
// with agg and returns the groups ordered by compare. An empty table yields
// an empty, non-nil slice.
func GroupBy[K comparable](t *Table, key func(SalesRecord) K, value func(SalesRecord) float64, agg Aggregation, compare func(a, b K) int) []Group[K] {
	index := make(map[K]int)
	groups := make([]Group[K], 0)
	for _, r := range t.Records() {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K]{Key: k})
		}
		groups[i].Value += value(r)
		groups[i].Count++
	}
	if agg == Mean {
		for i := range groups {
			groups[i].Value /= float64(groups[i].Count)
		}
	}
	slices.SortStableFunc(groups, func(a, b Group[K]) int { return compare(a.Key, b.Key) })
	return groups
}

// Field extractors used as GroupBy keys and values.

func Year(r SalesRecord) int                       { return r.Year }
func Month(r SalesRecord) string                   { return r.Month }
func VehicleType(r SalesRecord) string             { return r.VehicleType }
func AutomobileSales(r SalesRecord) float64        { return r.AutomobileSales }
func AdvertisingExpenditure(r SalesRecord) float64 { return r.AdvertisingExpenditure }

// TypeRate is the composite (vehicle type, unemployment rate) key.
type TypeRate struct {
	VehicleType      string
	UnemploymentRate float64
}

func VehicleTypeAndRate(r SalesRecord) TypeRate {
	return TypeRate{VehicleType: r.VehicleType, UnemploymentRate: r.UnemploymentRate}
}

// CompareTypeRate orders by vehicle type, then by unemployment rate.
func CompareTypeRate(a, b TypeRate) int {
	if c := cmp.Compare(a.VehicleType, b.VehicleType); c != 0 {
		return c
	}
	return cmp.Compare(a.UnemploymentRate, b.UnemploymentRate)
}
