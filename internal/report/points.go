package report

import (
	"strconv"

	"autosales/internal/core"
)

func points[K comparable](groups []core.Group[K], x func(K) string) []Point {
	out := make([]Point, 0, len(groups))
	for _, g := range groups {
		out = append(out, Point{X: x(g.Key), Y: g.Value})
	}
	return out
}

func intLabel(n int) string { return strconv.Itoa(n) }

func stringLabel(s string) string { return s }

func floatLabel(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
