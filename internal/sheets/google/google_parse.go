package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trastes/internal/core"
)

// parseValues converts a values matrix (as returned by Sheets API) into
// records. Blank rows are skipped silently, malformed rows with a warning.
// The matrix is expected to start below the header row.
func parseValues(ctx context.Context, values [][]interface{}) []core.Record {
	out := make([]core.Record, 0, len(values))
	for i, row := range values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		rec, err := core.ParseRow(cols)
		if err != nil {
			// +2: one for the header, one for 1-based rows.
			slog.WarnContext(ctx, "Skipping unreadable sheet row", "row", i+2, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}
