package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"trastes/internal/core"
	ports "trastes/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.RecordWriter = (*Client)(nil)
	_ ports.RecordReader = (*Client)(nil)
)

// Options configures a Sheets client. One of CredentialsJSON or
// CredentialsFile must hold a service account key.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client from service account credentials and makes
// sure the target tab exists with its header row.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(ctx, svc, opts.SpreadsheetID, opts.SheetName)
}

// NewWithService wraps an already configured service.
func NewWithService(ctx context.Context, svc *gsheet.Service, spreadsheetID, sheetName string) (*Client, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Trastes"
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetName:     sheetName,
	}
	if err := c.ensureSheet(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte

	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// rng builds an A1 range on the record tab. The tab name is always quoted
// so names with spaces or apostrophes work.
func (c *Client) rng(cells string) string {
	return "'" + strings.ReplaceAll(c.sheetName, "'", "''") + "'!" + cells
}

// ensureSheet creates the record tab when missing and writes the header
// row into an empty tab.
func (c *Client) ensureSheet(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	found := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			found = true
			break
		}
	}
	if !found {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: c.sheetName},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", c.sheetName, err)
		}
		slog.InfoContext(ctx, "Created record sheet", "sheet", c.sheetName)
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:D1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	header := make([]any, len(core.Header))
	for i, h := range core.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1:D1"), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	return nil
}

// Append adds the records below the last used row.
func (c *Client) Append(ctx context.Context, records ...core.Record) (string, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return "", fmt.Errorf("validation failed: %w", err)
		}
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(records) == 0 {
		return "", nil
	}

	values := make([][]any, 0, len(records))
	for _, r := range records {
		values = append(values, []any{r.Activity, r.Person, r.Date(), r.Time()})
	}
	vr := &gsheet.ValueRange{Values: values}

	// RAW keeps date and time as plain text instead of locale-formatted serials.
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:D"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return c.rng("A:D"), nil
}

// ReadAll reads every row below the header.
func (c *Client) ReadAll(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := c.rng("A2:D")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseValues(ctx, resp.Values), nil
}
