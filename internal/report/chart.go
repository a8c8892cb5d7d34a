// Package report turns the sales table into chart specifications.
//
// Everything here is pure: functions take the immutable table and return
// fresh values, so results for the same inputs are structurally identical.
package report

// ChartKind is the visual form of a chart.
type ChartKind string

const (
	Line ChartKind = "line"
	Bar  ChartKind = "bar"
	Pie  ChartKind = "pie"
)

// Field names used as chart axes, matching the dataset headers.
const (
	FieldYear         = "Year"
	FieldMonth        = "Month"
	FieldSales        = "Automobile_Sales"
	FieldVehicleType  = "Vehicle_Type"
	FieldAdvertising  = "Advertising_Expenditure"
	FieldUnemployment = "unemployment_rate"
)

// Point is one derived data row feeding a chart. For pie charts X is the
// slice name and Y its value.
type Point struct {
	X     string  `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

// ChartSpec describes one chart to render.
type ChartSpec struct {
	ID     string            `json:"id"`
	Kind   ChartKind         `json:"kind"`
	Title  string            `json:"title"`
	X      string            `json:"x"`
	Y      string            `json:"y"`
	Color  string            `json:"color,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
	Points []Point           `json:"points"`
}

// Label returns the display label for field, defaulting to the field name.
func (c ChartSpec) Label(field string) string {
	if l, ok := c.Labels[field]; ok {
		return l
	}
	return field
}

// Empty reports whether the chart has no data rows.
func (c ChartSpec) Empty() bool { return len(c.Points) == 0 }

// Layout arranges charts in rows of side-by-side cells.
type Layout [][]ChartSpec

// Charts flattens the layout in reading order.
func (l Layout) Charts() []ChartSpec {
	var out []ChartSpec
	for _, row := range l {
		out = append(out, row...)
	}
	return out
}

// pairs lays charts out two per row.
func pairs(charts ...ChartSpec) Layout {
	var l Layout
	for i := 0; i < len(charts); i += 2 {
		end := min(i+2, len(charts))
		l = append(l, charts[i:end])
	}
	return l
}

// Renderable is what the dashboard output region receives: either a single
// placeholder message or a chart layout.
type Renderable struct {
	Placeholder string `json:"placeholder,omitempty"`
	Rows        Layout `json:"rows,omitempty"`
}

// IsPlaceholder reports whether r carries a message instead of charts.
func (r Renderable) IsPlaceholder() bool { return r.Placeholder != "" }
