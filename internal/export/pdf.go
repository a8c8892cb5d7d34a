package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"autosales/internal/report"
)

const (
	pdfFont       = "Arial"
	pdfFontSize   = 10
	pdfRowHeight  = 6
	pdfHeadHeight = 7
	// rows below this offset start a new page on A4 portrait
	pdfPageBottom = 270
)

// PDFExporter writes layouts as a PDF with one table per chart.
type PDFExporter struct {
	title       string
	orientation string
	pageSize    string
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{
		title:       "Automobile Sales Report",
		orientation: "P",
		pageSize:    "A4",
	}
}

func (p *PDFExporter) ContentType() string { return "application/pdf" }

func (p *PDFExporter) FileExtension() string { return ".pdf" }

// Export writes every chart in reading order as a titled table.
func (p *PDFExporter) Export(layout report.Layout, w io.Writer) error {
	charts := layout.Charts()
	if len(charts) == 0 {
		return ErrEmptyLayout
	}

	pdf := gofpdf.New(p.orientation, "mm", p.pageSize, "")
	pdf.SetTitle(p.title, true)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.Cell(0, 10, p.title)
	pdf.Ln(14)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for i, chart := range charts {
		if i > 0 {
			pdf.Ln(6)
		}
		writeTable(pdf, chart, usable)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func writeTable(pdf *gofpdf.Fpdf, chart report.ChartSpec, usable float64) {
	if pdf.GetY() > pdfPageBottom-3*pdfRowHeight {
		pdf.AddPage()
	}

	pdf.SetFont(pdfFont, "B", 12)
	pdf.Cell(0, 8, chart.Title)
	pdf.Ln(9)

	headers := columns(chart)
	colWidth := usable / float64(len(headers))
	header := func() {
		pdf.SetFont(pdfFont, "B", pdfFontSize)
		pdf.SetFillColor(47, 85, 151)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range headers {
			pdf.CellFormat(colWidth, pdfHeadHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(pdfFont, "", pdfFontSize)
	}
	header()

	if len(chart.Points) == 0 {
		pdf.SetFont(pdfFont, "I", pdfFontSize)
		pdf.CellFormat(usable, pdfRowHeight, "No data for this selection.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		return
	}

	for _, pt := range chart.Points {
		cells := []string{pt.X, strconv.FormatFloat(pt.Y, 'f', 2, 64)}
		if chart.Color != "" {
			cells = append(cells, pt.Color)
		}
		for col, v := range cells {
			align := "L"
			if col == 1 {
				align = "R"
			}
			pdf.CellFormat(colWidth, pdfRowHeight, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)

		if pdf.GetY() > pdfPageBottom {
			pdf.AddPage()
			header()
		}
	}
}
