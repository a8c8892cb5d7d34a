package report

import (
	"cmp"

	"autosales/internal/core"
)

// RecessionReport summarises the rows flagged as recession periods.
// An empty selection yields four charts without data.
func RecessionReport(t *core.Table) Layout {
	rec := t.Filter(core.InRecession)

	byYear := core.GroupBy(rec, core.Year, core.AutomobileSales, core.Mean, cmp.Compare[int])
	byType := core.GroupBy(rec, core.VehicleType, core.AutomobileSales, core.Mean, cmp.Compare[string])
	spend := core.GroupBy(rec, core.VehicleType, core.AdvertisingExpenditure, core.Sum, cmp.Compare[string])
	byRate := core.GroupBy(rec, core.VehicleTypeAndRate, core.AutomobileSales, core.Mean, core.CompareTypeRate)

	rates := make([]Point, 0, len(byRate))
	for _, g := range byRate {
		rates = append(rates, Point{
			X:     g.Key.VehicleType,
			Y:     g.Value,
			Color: floatLabel(g.Key.UnemploymentRate),
		})
	}

	return pairs(
		ChartSpec{
			ID:     "recession-sales-by-year",
			Kind:   Line,
			Title:  "Average Automobile Sales During Recession",
			X:      FieldYear,
			Y:      FieldSales,
			Points: points(byYear, intLabel),
		},
		ChartSpec{
			ID:     "recession-sales-by-type",
			Kind:   Bar,
			Title:  "Average Vehicles Sold by Type During Recession",
			X:      FieldVehicleType,
			Y:      FieldSales,
			Points: points(byType, stringLabel),
		},
		ChartSpec{
			ID:     "recession-ad-share",
			Kind:   Pie,
			Title:  "Expenditure Share by Vehicle Type During Recession",
			X:      FieldVehicleType,
			Y:      FieldAdvertising,
			Points: points(spend, stringLabel),
		},
		ChartSpec{
			ID:    "recession-unemployment",
			Kind:  Bar,
			Title: "Unemployment Rate Effect on Vehicle Sales",
			X:     FieldVehicleType,
			Y:     FieldSales,
			Color: FieldUnemployment,
			Labels: map[string]string{
				FieldUnemployment: "Unemployment Rate",
				FieldSales:        "Average Sales",
			},
			Points: rates,
		},
	)
}
