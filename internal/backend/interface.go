// Package backend builds the sales dataset source selected by configuration.
package backend

import (
	"context"

	"autosales/internal/amqp"
	"autosales/internal/dataset"
)

type CleanupFunc func() error

// Result is a ready dataset reader plus the optional event publisher.
// Cleanup releases both and is never nil.
type Result struct {
	Reader    dataset.SalesReader
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	// csv
	CSVPath string

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID string
	GoogleSalesRange    string

	// optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
