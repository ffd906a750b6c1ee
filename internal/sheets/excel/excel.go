// Package excel stores chore records in a local .xlsx workbook.
//
// The workbook is re-read and rewritten in full on every append. A mutex
// serializes writers inside one process; two processes sharing the same
// file can still lose updates.
package excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"trastes/internal/core"
	ports "trastes/internal/sheets"
)

var (
	_ ports.RecordWriter = (*Store)(nil)
	_ ports.RecordReader = (*Store)(nil)
)

type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store for the workbook at path, creating the workbook with
// the header row when it does not exist yet.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("missing workbook path")
	}
	s := &Store{path: path}
	if err := s.ensureWorkbook(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureWorkbook() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat workbook %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workbook directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(core.Header))
	for i, h := range core.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := s.save(f); err != nil {
		return err
	}
	slog.Info("Created workbook", "path", s.path)
	return nil
}

// Append rewrites the workbook with the records added after the last row.
func (s *Store) Append(ctx context.Context, records ...core.Record) (string, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return "", fmt.Errorf("validation failed: %w", err)
		}
	}
	if len(records) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("read rows of %s: %w", sheet, err)
	}
	next := len(rows) + 1
	if next == 1 {
		// Header was removed by hand; put it back so row 1 stays reserved.
		header := make([]any, len(core.Header))
		for i, h := range core.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		next = 2
	}

	first := next
	for _, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return "", err
		}
		row := []any{r.Activity, r.Person, r.Date(), r.Time()}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", next, err)
		}
		next++
	}
	if err := s.save(f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s!A%d:D%d", sheet, first, next-1), nil
}

// ReadAll returns every record below the header row. Rows that cannot be
// parsed are skipped with a warning.
func (s *Store) ReadAll(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", sheet, err)
	}
	return parseRows(ctx, rows), nil
}

func parseRows(ctx context.Context, rows [][]string) []core.Record {
	out := make([]core.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		rec, err := core.ParseRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable workbook row", "row", i+1, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// save writes to a sibling temp file and renames it over the workbook so
// readers never see a half-written file.
func (s *Store) save(f *excelize.File) error {
	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
