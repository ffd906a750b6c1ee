//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"trastes/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_GoogleSheetsFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	credsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credsFile == "" {
		credsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credsJSON == "" && credsFile == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sheet := "trastes-it-" + time.Now().Format("20060102-150405")
	client, err := New(ctx, Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       sheet,
		CredentialsJSON: credsJSON,
		CredentialsFile: credsFile,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	before, err := client.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read before: %v", err)
	}

	rec := core.Record{Activity: "Gekookt", Person: "Nelson", At: time.Now().UTC().Truncate(time.Second)}
	ref, err := client.Append(ctx, rec)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	t.Logf("appended at %s (tab %s, remove it by hand)", ref, sheet)

	after, err := client.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d records, got %d", len(before)+1, len(after))
	}
	last := after[len(after)-1]
	if last.Activity != rec.Activity || last.Person != rec.Person || last.Time() != rec.Time() {
		t.Fatalf("unexpected last record: %+v", last)
	}
}
