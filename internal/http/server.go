package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"autosales/internal/cache"
	"autosales/internal/core"
	"autosales/internal/export"
	applog "autosales/internal/log"
	"autosales/internal/middleware/ratelimit"
	"autosales/internal/middleware/security"
	"autosales/internal/middleware/trace"
	"autosales/internal/report"
	appweb "autosales/web"
)

// ReportService is what the handlers need from the report layer.
type ReportService interface {
	Render(ctx context.Context, reportType string, year *int) (report.Renderable, error)
	Table() *core.Table
}

type Options struct {
	Logger *applog.Logger
	// ExportRateLimit is the number of workbook downloads allowed per client
	// per minute.
	ExportRateLimit int
	// Backend names the dataset source for the readiness report.
	Backend string
	// CacheStats, when set, is reported by /metrics.
	CacheStats func() cache.Stats
}

type Server struct {
	http.Server
	templates *template.Template
	reports   ReportService
	logger    *applog.Logger
	backend   string
	started   time.Time
	cacheStat func() cache.Stats

	ips     *security.IPResolver
	tracer  *trace.Middleware
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes, templates and middleware around svc.
func NewServer(addr string, svc ReportService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}

	s := &Server{
		templates: template.Must(parseTemplates()),
		reports:   svc,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		backend:   opts.Backend,
		cacheStat: opts.CacheStats,
		started:   time.Now(),
		ips:       security.NewIPResolver(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ExportRateLimit}),
	}
	s.tracer = trace.NewMiddleware(logger, s.ips.ClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServerFS(static))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /ui/year-select", s.handleYearSelect)
	mux.HandleFunc("GET /ui/report", s.handleReportPartial)
	mux.HandleFunc("GET /api/report", s.handleReportJSON)

	limitExport := s.limiter.Middleware(s.ips.ClientIP, func(w http.ResponseWriter, r *http.Request, clientIP string) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Export rate limit exceeded",
			applog.FieldClientIP, clientIP)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})
	mux.Handle("GET /export.xlsx", limitExport(s.handleExport(export.FormatExcel)))
	mux.Handle("GET /export.pdf", limitExport(s.handleExport(export.FormatPDF)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = applog.Middleware(logger, applog.ComponentHTTP, trace.RequestID)(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"yearParam": yearParam,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
