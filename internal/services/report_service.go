// Package services orchestrates report rendering around the pure report
// package: caching, request collapsing and view events.
package services

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"autosales/internal/amqp"
	"autosales/internal/cache"
	"autosales/internal/core"
	applog "autosales/internal/log"
	"autosales/internal/report"
)

// EventPublisher receives a message for every chart report served.
type EventPublisher interface {
	PublishReportViewed(ctx context.Context, msg *amqp.ReportViewedMessage) error
}

// ReportService renders dashboard output for a fixed table.
type ReportService struct {
	table     *core.Table
	cache     cache.Cache[report.Renderable]
	group     singleflight.Group
	publisher EventPublisher
	logger    *applog.Logger
}

type Option func(*ReportService)

// WithCache memoises rendered reports. The table never changes, so cached
// results are always current.
func WithCache(c cache.Cache[report.Renderable]) Option {
	return func(s *ReportService) { s.cache = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *ReportService) { s.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *ReportService) { s.logger = l }
}

func NewReportService(table *core.Table, opts ...Option) *ReportService {
	s := &ReportService{table: table}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.FromContext(context.Background()).WithComponent(applog.ComponentReport)
	}
	return s
}

// Table returns the table reports are computed from.
func (s *ReportService) Table() *core.Table { return s.table }

// Render returns the dashboard output for a selection. Placeholders are
// computed directly; chart layouts go through the cache.
func (s *ReportService) Render(ctx context.Context, reportType string, year *int) (report.Renderable, error) {
	if err := ctx.Err(); err != nil {
		return report.Renderable{}, err
	}

	if msg := report.Placeholder(reportType, year); msg != "" {
		return report.Renderable{Placeholder: msg}, nil
	}

	out, hit := s.cached(cacheKey(reportType, year), reportType, year)

	charts := len(out.Rows.Charts())
	s.logger.DebugContext(ctx, "Report rendered",
		applog.NewFields().
			WithSelection(reportType, year).
			With(applog.FieldCharts, charts).
			With(applog.FieldCacheHit, hit).
			Args()...)

	s.publish(ctx, reportType, year, charts)
	return out, nil
}

func (s *ReportService) cached(key, reportType string, year *int) (report.Renderable, bool) {
	if s.cache == nil {
		return report.Render(s.table, reportType, year), false
	}
	if v, ok := s.cache.Get(key); ok {
		return v, true
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		r := report.Render(s.table, reportType, year)
		s.cache.Set(key, r)
		return r, nil
	})
	return v.(report.Renderable), false
}

func (s *ReportService) publish(ctx context.Context, reportType string, year *int, charts int) {
	if s.publisher == nil {
		return
	}
	if reportType == report.Recession {
		year = nil
	}
	start := time.Now()
	if err := s.publisher.PublishReportViewed(ctx, amqp.NewReportViewedMessage(reportType, year, charts)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish report viewed event",
			applog.NewFields().
				WithSelection(reportType, year).
				WithOperation(applog.OpPublish).
				WithError(err).
				With(applog.FieldDuration, time.Since(start).Milliseconds()).
				Args()...)
	}
}

// cacheKey identifies a chart layout. Recession layouts do not depend on
// the year.
func cacheKey(reportType string, year *int) string {
	if reportType == report.Recession || year == nil {
		return reportType
	}
	return reportType + ":" + strconv.Itoa(*year)
}
