package core

import (
	"cmp"
	"strconv"
	"strings"
)

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// MonthIndex resolves "Jan", "january", "1" or "01" to 1..12.
func MonthIndex(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range monthNames {
		if strings.HasPrefix(s, name) {
			return i + 1, true
		}
	}
	return 0, false
}

// CompareMonths orders recognised months by calendar position, ahead of
// unrecognised values, which fall back to lexicographic order.
func CompareMonths(a, b string) int {
	ia, oka := MonthIndex(a)
	ib, okb := MonthIndex(b)
	switch {
	case oka && okb:
		if c := cmp.Compare(ia, ib); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case oka:
		return -1
	case okb:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
