package log

// Field names shared across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldReportType = "report_type"
	FieldYear       = "year"
	FieldCharts     = "chart_count"
	FieldRecords    = "records"
	FieldBackend    = "backend"
	FieldCacheHit   = "cache_hit"
	FieldSource     = "source"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentDataset   = "dataset"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentCache     = "cache"
	ComponentExport    = "export"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentImport    = "import"
)

const (
	OpLoad     = "load"
	OpRender   = "render"
	OpExport   = "export"
	OpImport   = "import"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields accumulates structured attributes for one log call.
type Fields map[string]any

func NewFields() Fields { return make(Fields) }

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithSelection records a dashboard selection. A nil year is left out.
func (f Fields) WithSelection(reportType string, year *int) Fields {
	f[FieldReportType] = reportType
	if year != nil {
		f[FieldYear] = *year
	}
	return f
}

func (f Fields) With(key string, value any) Fields {
	f[key] = value
	return f
}

// Args flattens the fields into slog key/value arguments.
func (f Fields) Args() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
