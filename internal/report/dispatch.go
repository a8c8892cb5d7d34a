package report

import "autosales/internal/core"

// Report types offered by the dashboard.
const (
	Yearly    = "yearly"
	Recession = "recession"
)

// Placeholder messages shown instead of charts.
const (
	MsgSelectReport = "Please select a report type."
	MsgSelectYear   = "Please select a valid report type and year."
)

// Selectable year range.
const (
	MinYear = 1980
	MaxYear = 2023
)

// Option is one entry of a selector.
type Option struct {
	Label string
	Value string
}

// ReportOptions lists the report-type selector entries in display order.
var ReportOptions = []Option{
	{Label: "Yearly Statistics", Value: Yearly},
	{Label: "Recession Period Statistics", Value: Recession},
}

// YearOptions returns MinYear..MaxYear inclusive.
func YearOptions() []int {
	years := make([]int, 0, MaxYear-MinYear+1)
	for y := MinYear; y <= MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// YearSelectorDisabled reports whether the year selector should be inert
// for the given report type. Only the yearly report uses a year.
func YearSelectorDisabled(reportType string) bool {
	return reportType != Yearly
}

// Placeholder returns the message shown instead of charts for a selection,
// or "" when the selection renders a report. Unknown report types are
// treated like a missing one; a yearly report without a year asks for one.
func Placeholder(reportType string, year *int) string {
	switch {
	case reportType == Recession:
		return ""
	case reportType == Yearly && year != nil:
		return ""
	case reportType == Yearly:
		return MsgSelectYear
	default:
		return MsgSelectReport
	}
}

// Render maps the two selections to dashboard output. The recession report
// ignores year.
func Render(t *core.Table, reportType string, year *int) Renderable {
	if msg := Placeholder(reportType, year); msg != "" {
		return Renderable{Placeholder: msg}
	}
	if reportType == Recession {
		return Renderable{Rows: RecessionReport(t)}
	}
	return Renderable{Rows: YearlyReport(t, *year)}
}
