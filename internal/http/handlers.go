package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// writeJSON encodes v before touching w, so an encode error leaves the
// response unwritten and the caller free to answer with an error status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready once a dataset is loaded, with its size.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{"templates": "ok"}

	if s.reports == nil || s.reports.Table() == nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["dataset"] = "not loaded"
	} else {
		tbl := s.reports.Table()
		years := tbl.Years()
		dataset := map[string]any{
			"status":  "ok",
			"records": tbl.Len(),
		}
		if s.backend != "" {
			dataset["backend"] = s.backend
		}
		if len(years) > 0 {
			dataset["years"] = fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
		}
		checks["dataset"] = dataset
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.GetMetrics().ClientCount,
	}

	_ = writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tm.TotalRequests)
	metric("http_requests_failed_total", "counter", "Requests answered with a 5xx status", tm.FailedRequests)
	metric("http_request_duration_avg_microseconds", "gauge", "Average request duration", tm.AverageMicros)
	metric("export_rate_limited_total", "counter", "Workbook downloads rejected by the rate limiter", rl.Rejected)
	metric("export_rate_limit_clients", "gauge", "Clients tracked by the rate limiter", rl.ClientCount)

	if s.cacheStat != nil {
		cs := s.cacheStat()
		metric("report_cache_entries", "gauge", "Rendered reports held in the cache", cs.Size)
		metric("report_cache_hits_total", "counter", "Report cache hits", cs.Hits)
		metric("report_cache_misses_total", "counter", "Report cache misses", cs.Misses)
	}
	if s.reports != nil && s.reports.Table() != nil {
		metric("dataset_records", "gauge", "Rows in the loaded sales dataset", s.reports.Table().Len())
	}
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}
