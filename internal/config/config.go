// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	applog "autosales/internal/log"
)

// Data backends the dashboard can load from.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

var validBackends = []string{BackendCSV, BackendSQLite, BackendSheets}

type Config struct {
	// HTTP server
	Port     string
	BindAddr string

	// Dataset
	DataBackend  string
	SalesCSVPath string
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSalesRange      string
	GoogleServiceAccount  string
	GoogleCredentialsFile string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reports
	ReportCacheSize int
	ReportCacheTTL  time.Duration
	ExportRateLimit int

	// View worker
	ViewSummaryInterval time.Duration

	LogLevel string
}

func Load() *Config {
	creds := getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	if creds == "" {
		creds = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	return &Config{
		Port:     getEnv("PORT", "8050"),
		BindAddr: getEnv("BIND_ADDR", "0.0.0.0"),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendCSV)),
		SalesCSVPath: getEnv("SALES_CSV_PATH", "historical_automobile_sales.csv"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/autosales.db"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSalesRange:      getEnv("GOOGLE_SALES_RANGE", "Sales!A:Z"),
		GoogleServiceAccount:  getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleCredentialsFile: creds,

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "autosales"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_views"),

		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 64),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 10*time.Minute),
		ExportRateLimit: getEnvInt("EXPORT_RATE_LIMIT", 20),

		ViewSummaryInterval: getEnvDuration("VIEW_SUMMARY_INTERVAL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

// AMQPEnabled reports whether report view events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.BindAddr != "" && net.ParseIP(c.BindAddr) == nil && c.BindAddr != "localhost" {
		errs = append(errs, fmt.Sprintf("invalid bind address '%s': must be an IP address", c.BindAddr))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendCSV:
		if c.SalesCSVPath == "" {
			errs = append(errs, "sales CSV path cannot be empty when using csv backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSalesRange == "" {
			errs = append(errs, "Google sales range is required when using sheets backend")
		}
		if c.GoogleServiceAccount == "" && c.GoogleCredentialsFile == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		} else if c.GoogleServiceAccount == "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}
	if c.ExportRateLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid export rate limit %d: must be at least 1", c.ExportRateLimit))
	}

	if c.ViewSummaryInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid view summary interval %v: must be at least 1 second", c.ViewSummaryInterval))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset; a value
// that does not parse becomes -1 so Validate reports it.
func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return i
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return -1
	}
	return d
}
