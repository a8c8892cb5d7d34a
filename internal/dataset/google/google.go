// Package google loads the sales dataset from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"autosales/internal/core"
	"autosales/internal/dataset"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange covers the whole "Sales" sheet.
const DefaultRange = "Sales!A:Z"

// valuesReader is the slice of the Sheets API the client needs.
type valuesReader interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

type Client struct {
	values        valuesReader
	spreadsheetID string
	rng           string
}

var _ dataset.SalesReader = (*Client)(nil)

// New creates a Sheets-backed reader. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, rng string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&sheetsValues{svc: svc}, spreadsheetID, rng), nil
}

func newClient(values valuesReader, spreadsheetID, rng string) *Client {
	if strings.TrimSpace(rng) == "" {
		rng = DefaultRange
	}
	return &Client{values: values, spreadsheetID: spreadsheetID, rng: rng}
}

// Load reads the configured range and parses it with the same header rules
// as the CSV loader.
func (c *Client) Load(ctx context.Context) (*core.Table, error) {
	if c.values == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.values.Get(ctx, c.spreadsheetID, c.rng)
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", c.rng, err)
	}
	records, err := parseValues(values)
	if err != nil {
		return nil, fmt.Errorf("parse range %s: %w", c.rng, err)
	}
	slog.InfoContext(ctx, "Sales sheet loaded", "range", c.rng, "records", len(records))
	return core.NewTable(records), nil
}

// newSheetsService initializes a read-only Sheets service from service
// account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s *sheetsValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
