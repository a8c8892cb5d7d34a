// Package worker records dashboard report views consumed from AMQP.
package worker

import (
	"context"
	"fmt"
	"strconv"

	"autosales/internal/amqp"
	applog "autosales/internal/log"
	"autosales/internal/report"
	"autosales/internal/storage"
)

// ViewStore persists report views and summarises them.
type ViewStore interface {
	RecordView(ctx context.Context, v storage.ReportView) error
	ViewCounts(ctx context.Context) ([]storage.ViewCount, error)
}

// ViewWorker turns report viewed events into stored views.
type ViewWorker struct {
	store  ViewStore
	logger *applog.Logger
}

func NewViewWorker(store ViewStore, logger *applog.Logger) *ViewWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &ViewWorker{store: store, logger: logger.WithComponent(applog.ComponentAMQP)}
}

// HandleReportViewed stores one event. Events for report types the dashboard
// does not serve are logged and dropped so they are not redelivered.
func (w *ViewWorker) HandleReportViewed(ctx context.Context, msg *amqp.ReportViewedMessage) error {
	fields := applog.NewFields().WithSelection(msg.ReportType, msg.Year).With(applog.FieldCharts, msg.Charts)

	if msg.ReportType != report.Yearly && msg.ReportType != report.Recession {
		w.logger.WarnContext(ctx, "Dropping view of unknown report type", fields.Args()...)
		return nil
	}

	v := storage.ReportView{
		ReportType: msg.ReportType,
		Charts:     msg.Charts,
		ViewedAt:   msg.Timestamp,
	}
	// recession views are counted regardless of the year selector
	if msg.ReportType == report.Yearly {
		v.Year = msg.Year
	}

	if err := w.store.RecordView(ctx, v); err != nil {
		return fmt.Errorf("record report view: %w", err)
	}
	w.logger.DebugContext(ctx, "Report view recorded", fields.Args()...)
	return nil
}

// LogSummary writes one line per viewed selection, most viewed first.
func (w *ViewWorker) LogSummary(ctx context.Context) error {
	counts, err := w.store.ViewCounts(ctx)
	if err != nil {
		return fmt.Errorf("load view counts: %w", err)
	}
	if len(counts) == 0 {
		w.logger.InfoContext(ctx, "No report views recorded yet")
		return nil
	}

	total := 0
	for _, c := range counts {
		total += c.Views
		w.logger.InfoContext(ctx, "Report views",
			applog.FieldReportType, c.ReportType,
			applog.FieldYear, yearLabel(c.Year),
			"views", c.Views,
			"last_viewed", c.LastViewed)
	}
	w.logger.InfoContext(ctx, "Report view summary", "selections", len(counts), "total_views", total)
	return nil
}

func yearLabel(year *int) string {
	if year == nil {
		return "-"
	}
	return strconv.Itoa(*year)
}
