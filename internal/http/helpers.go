package http

import (
	"net/http"
	"strconv"
	"strings"

	"autosales/internal/report"
)

// parseSelection reads report and year from the query. A year that is
// missing or not a number is treated as not selected.
func parseSelection(r *http.Request) (reportType string, year *int) {
	q := r.URL.Query()
	return strings.TrimSpace(q.Get("report")), parseYear(q.Get("year"))
}

func parseYear(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &y
}

// yearParam renders an optional year for query strings.
func yearParam(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

// exportFilename names a download after the selection.
func exportFilename(reportType string, year *int, ext string) string {
	name := "automobile-sales-" + reportType
	if y := yearParam(year); y != "" && reportType != report.Recession {
		name += "-" + y
	}
	return name + ext
}
