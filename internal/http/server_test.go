package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autosales/internal/core"
	"autosales/internal/export"
	applog "autosales/internal/log"
	"autosales/internal/middleware/trace"
	"autosales/internal/report"
	"autosales/internal/services"
)

type failingService struct{ table *core.Table }

func (f failingService) Render(context.Context, string, *int) (report.Renderable, error) {
	return report.Renderable{}, errors.New("boom")
}

func (f failingService) Table() *core.Table { return f.table }

// fixedService returns out for every selection.
type fixedService struct {
	table *core.Table
	out   report.Renderable
}

func (f fixedService) Render(context.Context, string, *int) (report.Renderable, error) {
	return f.out, nil
}

func (f fixedService) Table() *core.Table { return f.table }

func testTable() *core.Table {
	return core.NewTable([]core.SalesRecord{
		{Year: 1980, Month: "Jan", AutomobileSales: 100, VehicleType: "Supperminicar", AdvertisingExpenditure: 1000, UnemploymentRate: 5.2, Recession: true},
		{Year: 1980, Month: "Feb", AutomobileSales: 200, VehicleType: "Mediumfamilycar", AdvertisingExpenditure: 1500, UnemploymentRate: 5.5},
		{Year: 1981, Month: "Jan", AutomobileSales: 300, VehicleType: "Supperminicar", AdvertisingExpenditure: 2000, UnemploymentRate: 6.1, Recession: true},
	})
}

func newTestServer(t *testing.T, svc ReportService, exportLimit int) *Server {
	t.Helper()
	logger := applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
	srv := NewServer(":0", svc, Options{Logger: logger, ExportRateLimit: exportLimit, Backend: "csv"})
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Automobile Sales Dashboard",
		`id="dropdown-statistics"`,
		"Yearly Statistics",
		"Recession Period Statistics",
		`id="select-year"`,
		"disabled",
		report.MsgSelectReport,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestIndex_DeepLink(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	body := get(t, srv, "/?report=recession").Body.String()
	for _, want := range []string{
		`id="recession-sales-by-year"`,
		`class="chart-spec"`,
		`data-target="recession-unemployment"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("deep link missing %q", want)
		}
	}
	if strings.Contains(body, report.MsgSelectReport) {
		t.Error("deep link still shows the placeholder")
	}
}

func TestYearSelect(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	tests := []struct {
		name     string
		query    string
		disabled bool
	}{
		{"yearly enables", "report=yearly", false},
		{"recession disables", "report=recession", true},
		{"empty disables", "report=", true},
		{"unknown disables", "report=weekly", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, srv, "/ui/year-select?"+tt.query)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			body := rr.Body.String()
			if got := strings.Contains(body, "disabled"); got != tt.disabled {
				t.Errorf("disabled = %v, want %v", got, tt.disabled)
			}
			if !strings.Contains(body, `<option value="2023"`) || !strings.Contains(body, `<option value="1980"`) {
				t.Error("year options missing")
			}
			if !strings.Contains(rr.Header().Get("HX-Trigger"), EventSelectionChanged) {
				t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestYearSelect_KeepsSelection(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	body := get(t, srv, "/ui/year-select?report=yearly&year=1981").Body.String()
	if !strings.Contains(body, `<option value="1981" selected>`) {
		t.Error("selected year not marked")
	}
}

func TestYearSelect_RetainsYearWhileDisabled(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	// yearly 1985 -> recession: the disabled selector carries 1985 along
	body := get(t, srv, "/ui/year-select?report=recession&year=1985").Body.String()
	if !strings.Contains(body, `<input type="hidden" id="last-year" name="last_year" value="1985">`) {
		t.Fatalf("disabled selector dropped the year:\n%s", body)
	}

	// recession -> yearly: the disabled select posts nothing, only last_year
	body = get(t, srv, "/ui/year-select?report=yearly&last_year=1985").Body.String()
	if !strings.Contains(body, `<option value="1985" selected>`) {
		t.Error("year not restored when re-enabling the selector")
	}
	if strings.Contains(body, `name="last_year"`) {
		t.Error("enabled selector should not carry a hidden year")
	}

	// the enabled select wins over a stale hidden value
	body = get(t, srv, "/ui/year-select?report=yearly&year=1990&last_year=1985").Body.String()
	if !strings.Contains(body, `<option value="1990" selected>`) {
		t.Error("explicit year should take precedence")
	}
}

func TestReportPartial(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	tests := []struct {
		name        string
		query       string
		placeholder string
		charts      []string
	}{
		{"nothing selected", "", report.MsgSelectReport, nil},
		{"unknown type", "report=weekly&year=1980", report.MsgSelectReport, nil},
		{"yearly without year", "report=yearly", report.MsgSelectYear, nil},
		{"yearly with bad year", "report=yearly&year=abc", report.MsgSelectYear, nil},
		{"yearly", "report=yearly&year=1980", "", []string{
			"yearly-sales-trend", "yearly-monthly-sales", "yearly-sales-by-type", "yearly-ad-spend",
		}},
		{"recession ignores year", "report=recession&year=1980", "", []string{
			"recession-sales-by-year", "recession-sales-by-type", "recession-ad-share", "recession-unemployment",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, srv, "/ui/report?"+tt.query)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			body := rr.Body.String()
			trigger := rr.Header().Get("HX-Trigger")

			if tt.placeholder != "" {
				if !strings.Contains(body, tt.placeholder) {
					t.Errorf("body missing placeholder %q", tt.placeholder)
				}
				if strings.Contains(body, "chart-card") {
					t.Error("placeholder response contains charts")
				}
				if trigger != "" {
					t.Errorf("placeholder raised HX-Trigger %q", trigger)
				}
				return
			}

			for _, id := range tt.charts {
				if !strings.Contains(body, `<canvas id="`+id+`">`) {
					t.Errorf("body missing chart %q", id)
				}
			}
			if got := strings.Count(body, `class="chart-row"`); got != 2 {
				t.Errorf("chart rows = %d, want 2", got)
			}
			if !strings.Contains(trigger, EventReportRendered) {
				t.Errorf("HX-Trigger = %q", trigger)
			}
		})
	}
}

func TestReportPartial_EmptyYearShowsNotice(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	body := get(t, srv, "/ui/report?report=yearly&year=2010").Body.String()
	if !strings.Contains(body, "No data for this selection.") {
		t.Error("empty charts not flagged")
	}
}

func TestReportJSON(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	t.Run("placeholder", func(t *testing.T) {
		rr := get(t, srv, "/api/report?report=yearly")
		var got report.Renderable
		if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Placeholder != report.MsgSelectYear || got.Rows != nil {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("recession", func(t *testing.T) {
		rr := get(t, srv, "/api/report?report=recession")
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var got report.Renderable
		if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.IsPlaceholder() {
			t.Fatalf("unexpected placeholder %q", got.Placeholder)
		}
		charts := got.Rows.Charts()
		if len(charts) != 4 {
			t.Fatalf("charts = %d, want 4", len(charts))
		}
		first := charts[0]
		if first.Kind != report.Line || len(first.Points) != 2 {
			t.Errorf("first chart = %+v", first)
		}
	})
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	t.Run("workbook", func(t *testing.T) {
		rr := get(t, srv, "/export.xlsx?report=yearly&year=1980")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != (export.ExcelExporter{}).ContentType() {
			t.Errorf("Content-Type = %q", ct)
		}
		cd := rr.Header().Get("Content-Disposition")
		if !strings.Contains(cd, "automobile-sales-yearly-1980.xlsx") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		// xlsx files are zip archives
		if !strings.HasPrefix(rr.Body.String(), "PK") {
			t.Error("body is not a zip archive")
		}
	})

	t.Run("pdf", func(t *testing.T) {
		rr := get(t, srv, "/export.pdf?report=recession&year=1999")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `"automobile-sales-recession.pdf"`) {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !strings.HasPrefix(rr.Body.String(), "%PDF-") {
			t.Error("body is not a PDF")
		}
	})

	t.Run("placeholder rejected", func(t *testing.T) {
		rr := get(t, srv, "/export.xlsx?report=yearly")
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), report.MsgSelectYear) {
			t.Errorf("body = %q", rr.Body.String())
		}
	})
}

func TestExport_RateLimited(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 2)

	for i := range 2 {
		if rr := get(t, srv, "/export.xlsx?report=recession"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rr.Code)
		}
	}
	rr := get(t, srv, "/export.xlsx?report=recession")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}

	metrics := get(t, srv, "/metrics").Body.String()
	if !strings.Contains(metrics, "export_rate_limited_total 1") {
		t.Errorf("metrics missing rejection:\n%s", metrics)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	rr := get(t, srv, "/healthz")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz = %d %s", rr.Code, rr.Body.String())
	}

	rr = get(t, srv, "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rr.Code)
	}
	var body struct {
		Status string `json:"status"`
		Checks struct {
			Dataset struct {
				Records int    `json:"records"`
				Backend string `json:"backend"`
				Years   string `json:"years"`
			} `json:"dataset"`
		} `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ready" || body.Checks.Dataset.Records != 3 ||
		body.Checks.Dataset.Backend != "csv" || body.Checks.Dataset.Years != "1980-1981" {
		t.Errorf("readyz = %+v", body)
	}
}

func TestReady_NoDataset(t *testing.T) {
	srv := newTestServer(t, failingService{}, 10)

	if rr := get(t, srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestRenderFailure(t *testing.T) {
	srv := newTestServer(t, failingService{table: testTable()}, 10)

	for _, target := range []string{"/", "/ui/report?report=recession", "/api/report", "/export.xlsx?report=recession"} {
		if rr := get(t, srv, target); rr.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", target, rr.Code)
		}
	}
}

func TestReportJSON_UnencodableValue(t *testing.T) {
	out := report.Renderable{Rows: report.Layout{{{
		ID:     "sales",
		Kind:   report.Line,
		Points: []report.Point{{X: "1980", Y: math.NaN()}},
	}}}}
	srv := newTestServer(t, fixedService{table: testTable(), out: out}, 10)

	rr := get(t, srv, "/api/report?report=recession")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected an error body")
	}
	if strings.Contains(rr.Body.String(), `"rows"`) {
		t.Errorf("partial report written: %s", rr.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)
	get(t, srv, "/healthz")

	rr := get(t, srv, "/metrics")
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"# TYPE http_requests_total counter",
		"dataset_records 3",
		"uptime_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	rr := get(t, srv, "/healthz")
	if rr.Header().Get(trace.HeaderRequestID) == "" {
		t.Error("request id header missing")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, services.NewReportService(testTable()), 10)

	for _, name := range []string{"app.js", "style.css"} {
		rr := get(t, srv, "/static/"+name)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", name, rr.Code)
		}
		if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
			t.Errorf("%s Cache-Control = %q", name, cc)
		}
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		query      string
		wantReport string
		wantYear   int
		hasYear    bool
	}{
		{"", "", 0, false},
		{"report=yearly&year=1999", "yearly", 1999, true},
		{"report=+recession+", "recession", 0, false},
		{"report=yearly&year=", "yearly", 0, false},
		{"report=yearly&year=19x9", "yearly", 0, false},
		{"year=2005", "", 2005, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			rt, year := parseSelection(r)
			if rt != tt.wantReport {
				t.Errorf("report = %q, want %q", rt, tt.wantReport)
			}
			if (year != nil) != tt.hasYear || (year != nil && *year != tt.wantYear) {
				t.Errorf("year = %v, want %d (set=%v)", year, tt.wantYear, tt.hasYear)
			}
		})
	}
}

func TestExportFilename(t *testing.T) {
	y := 2001
	tests := []struct {
		rt   string
		year *int
		want string
	}{
		{report.Yearly, &y, "automobile-sales-yearly-2001.xlsx"},
		{report.Recession, &y, "automobile-sales-recession.xlsx"},
		{report.Recession, nil, "automobile-sales-recession.xlsx"},
	}
	for _, tt := range tests {
		if got := exportFilename(tt.rt, tt.year, ".xlsx"); got != tt.want {
			t.Errorf("exportFilename(%q) = %q, want %q", tt.rt, got, tt.want)
		}
	}
}

