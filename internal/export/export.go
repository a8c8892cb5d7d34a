// Package export writes rendered reports as downloadable files.
package export

import (
	"errors"
	"fmt"
	"io"

	"autosales/internal/report"
)

// Format names a download format as it appears in URLs.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

var (
	ErrEmptyLayout       = errors.New("layout has no charts")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Exporter writes a chart layout in one file format.
type Exporter interface {
	Export(layout report.Layout, w io.Writer) error
	ContentType() string
	FileExtension() string
}

// New returns the exporter for format.
func New(format Format) (Exporter, error) {
	switch format {
	case FormatExcel:
		return ExcelExporter{}, nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// columns are the table headers for a chart's points: x, y and, for
// coloured charts, the colour field.
func columns(chart report.ChartSpec) []string {
	headers := []string{chart.Label(chart.X), chart.Label(chart.Y)}
	if chart.Color != "" {
		headers = append(headers, chart.Label(chart.Color))
	}
	return headers
}
