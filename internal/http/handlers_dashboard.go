package http

import (
	"bytes"
	"net/http"

	"autosales/internal/export"
	applog "autosales/internal/log"
	"autosales/internal/report"
)

const pageTitle = "Automobile Sales Dashboard"

type yearSelectView struct {
	Disabled bool
	Years    []int
	Selected int
}

type reportView struct {
	ReportType  string
	Year        *int
	Placeholder string
	Rows        report.Layout
}

type indexView struct {
	Title         string
	ReportOptions []report.Option
	ReportType    string
	YearSelect    yearSelectView
	Output        reportView
}

func newYearSelectView(reportType string, year *int) yearSelectView {
	v := yearSelectView{
		Disabled: report.YearSelectorDisabled(reportType),
		Years:    report.YearOptions(),
	}
	if year != nil {
		v.Selected = *year
	}
	return v
}

func newReportView(reportType string, year *int, out report.Renderable) reportView {
	return reportView{
		ReportType:  reportType,
		Year:        year,
		Placeholder: out.Placeholder,
		Rows:        out.Rows,
	}
}

// handleIndex renders the dashboard page. A selection in the query string
// is rendered directly so links to a report work.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	reportType, year := parseSelection(r)
	out, err := s.reports.Render(r.Context(), reportType, year)
	if err != nil {
		s.fail(w, r, "Report render failed", err)
		return
	}

	data := indexView{
		Title:         pageTitle,
		ReportOptions: report.ReportOptions,
		ReportType:    reportType,
		YearSelect:    newYearSelectView(reportType, year),
		Output:        newReportView(reportType, year, out),
	}
	s.render(w, r, "index.html", data, NewHTMXResponse())
}

// handleYearSelect re-renders the year selector for the chosen report type
// and asks the page to refresh the output.
func (s *Server) handleYearSelect(w http.ResponseWriter, r *http.Request) {
	reportType, year := parseSelection(r)
	if year == nil {
		// a disabled selector posts its last year through a hidden input
		year = parseYear(r.URL.Query().Get("last_year"))
	}
	s.render(w, r, "year_select", newYearSelectView(reportType, year),
		NewHTMXResponse().TriggerSelectionChanged(reportType))
}

// handleReportPartial renders the output container contents.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	reportType, year := parseSelection(r)
	out, err := s.reports.Render(r.Context(), reportType, year)
	if err != nil {
		s.fail(w, r, "Report render failed", err)
		return
	}

	b := NewHTMXResponse()
	if !out.IsPlaceholder() {
		b.TriggerReportRendered(reportType, year, len(out.Rows.Charts()))
	}
	s.render(w, r, "report", newReportView(reportType, year, out), b)
}

// handleReportJSON returns the renderable as {"placeholder": ...} or
// {"rows": ...}.
func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	reportType, year := parseSelection(r)
	out, err := s.reports.Render(r.Context(), reportType, year)
	if err != nil {
		s.fail(w, r, "Report render failed", err)
		return
	}
	if err := writeJSON(w, http.StatusOK, out); err != nil {
		s.fail(w, r, "Encode report failed", err)
	}
}

// handleExport downloads the selected report in format. Selections that
// produce a placeholder are rejected with 422 and the placeholder text.
func (s *Server) handleExport(format export.Format) http.Handler {
	exporter, err := export.New(format)
	if err != nil {
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reportType, year := parseSelection(r)
		out, err := s.reports.Render(r.Context(), reportType, year)
		if err != nil {
			s.fail(w, r, "Report render failed", err)
			return
		}
		if out.IsPlaceholder() {
			UnprocessableEntityError(out.Placeholder).Write(w)
			return
		}

		var buf bytes.Buffer
		if err := exporter.Export(out.Rows, &buf); err != nil {
			s.fail(w, r, "Report export failed", err, "format", format)
			return
		}

		applog.FromContext(r.Context()).InfoContext(r.Context(), "Report exported",
			applog.NewFields().
				WithSelection(reportType, year).
				WithOperation(applog.OpExport).
				With(applog.FieldCharts, len(out.Rows.Charts())).
				With("format", format).
				Args()...)

		NewHTMXResponse().
			Header("Content-Type", exporter.ContentType()).
			Header("Content-Disposition", `attachment; filename="`+exportFilename(reportType, year, exporter.FileExtension())+`"`).
			Body(buf.Bytes()).
			Write(w)
	})
}

// render executes a template into a buffer so a failure can still become a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, "Template execution failed", err, "template", name)
		return
	}
	b.BodyHTML(buf.String()).Write(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	ctx := r.Context()
	applog.FromContext(ctx).ErrorContext(ctx, msg, append([]any{applog.FieldError, err}, args...)...)
	InternalServerError(msg + ": " + err.Error()).Write(w)
}
