package report

import (
	"cmp"
	"fmt"

	"autosales/internal/core"
)

// YearlyReport shows the long-run trend next to a breakdown of one year.
// The first chart always covers every year in the table; the other three
// only the selected year, and are empty when that year has no rows. The
// year is not checked against the table.
func YearlyReport(t *core.Table, year int) Layout {
	inYear := t.Filter(core.InYear(year))

	trend := core.GroupBy(t, core.Year, core.AutomobileSales, core.Mean, cmp.Compare[int])
	monthly := core.GroupBy(inYear, core.Month, core.AutomobileSales, core.Sum, core.CompareMonths)
	byType := core.GroupBy(inYear, core.VehicleType, core.AutomobileSales, core.Mean, cmp.Compare[string])
	spend := core.GroupBy(inYear, core.VehicleType, core.AdvertisingExpenditure, core.Sum, cmp.Compare[string])

	return pairs(
		ChartSpec{
			ID:     "yearly-sales-trend",
			Kind:   Line,
			Title:  "Automobile Sales Over Years",
			X:      FieldYear,
			Y:      FieldSales,
			Points: points(trend, intLabel),
		},
		ChartSpec{
			ID:     "yearly-monthly-sales",
			Kind:   Line,
			Title:  fmt.Sprintf("Monthly Automobile Sales in %d", year),
			X:      FieldMonth,
			Y:      FieldSales,
			Points: points(monthly, stringLabel),
		},
		ChartSpec{
			ID:     "yearly-sales-by-type",
			Kind:   Bar,
			Title:  fmt.Sprintf("Average Vehicles Sold by Type in %d", year),
			X:      FieldVehicleType,
			Y:      FieldSales,
			Points: points(byType, stringLabel),
		},
		ChartSpec{
			ID:     "yearly-ad-spend",
			Kind:   Pie,
			Title:  fmt.Sprintf("Advertisement Expenditure by Vehicle Type in %d", year),
			X:      FieldVehicleType,
			Y:      FieldAdvertising,
			Points: points(spend, stringLabel),
		},
	)
}
