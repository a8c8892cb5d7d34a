package google

import (
	"fmt"
	"strconv"
	"strings"

	"autosales/internal/core"
	"autosales/internal/dataset"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// sales records. The first row must hold the dataset headers.
func parseValues(values [][]interface{}) ([]core.SalesRecord, error) {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return dataset.ParseRows(rows)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			// unformatted numbers arrive as float64; avoid exponent notation
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
