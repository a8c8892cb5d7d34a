package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"autosales/internal/report"
)

const (
	maxSheetName = 31
	headerRow    = 3
)

// ExcelExporter writes layouts as xlsx workbooks.
type ExcelExporter struct{}

func (ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (ExcelExporter) FileExtension() string { return ".xlsx" }

// Export writes one worksheet per chart in reading order. Each sheet
// carries the chart title, a header row naming the fields and one row per
// data point.
func (ExcelExporter) Export(layout report.Layout, w io.Writer) error {
	charts := layout.Charts()
	if len(charts) == 0 {
		return ErrEmptyLayout
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5597"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	used := make(map[string]bool, len(charts))
	for i, chart := range charts {
		name := uniqueSheetName(chart, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeChart(f, name, chart, titleStyle, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeChart(f *excelize.File, sheet string, chart report.ChartSpec, titleStyle, headerStyle int) error {
	if err := f.SetCellValue(sheet, "A1", chart.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	headers := columns(chart)
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return err
	}

	for i, p := range chart.Points {
		row := []any{cellValue(chart.X, p.X), p.Y}
		if chart.Color != "" {
			row = append(row, cellValue(chart.Color, p.Color))
		}
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 22)
}

// cellValue keeps numeric fields numeric in the workbook.
func cellValue(field, v string) any {
	switch field {
	case report.FieldYear:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case report.FieldUnemployment:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}

var sheetNameReplacer = strings.NewReplacer(
	"[", "", "]", "", ":", "", "*", "", "?", "", "/", "", "\\", "",
)

func uniqueSheetName(chart report.ChartSpec, i int, used map[string]bool) string {
	name := sheetNameReplacer.Replace(chart.ID)
	if name == "" {
		name = fmt.Sprintf("Chart %d", i+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = base[:min(len(base), maxSheetName-len(suffix))] + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
