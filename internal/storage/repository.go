package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"trastes/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of a stored record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// StoredRecord is a record together with its row ID and mirror state.
type StoredRecord struct {
	ID         int64
	Record     core.Record
	SyncStatus string
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores the records in one transaction and returns their IDs in
// the same order.
func (r *SQLiteRepository) Insert(ctx context.Context, records ...core.Record) ([]int64, error) {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chore_records (activity, person, date, time) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx, rec.Activity, rec.Person, rec.Date(), rec.Time())
		if err != nil {
			return nil, fmt.Errorf("insert record: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Records saved to SQLite", "ids", ids)
	return ids, nil
}

// Append implements sheets.RecordWriter
func (r *SQLiteRepository) Append(ctx context.Context, records ...core.Record) (string, error) {
	ids, err := r.Insert(ctx, records...)
	if err != nil {
		return "", err
	}
	return RowRef(ids), nil
}

// RowRef formats inserted IDs as a row reference.
func RowRef(ids []int64) string {
	switch len(ids) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("sqlite:%d", ids[0])
	default:
		return fmt.Sprintf("sqlite:%d-%d", ids[0], ids[len(ids)-1])
	}
}

// ReadAll implements sheets.RecordReader
func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, activity, person, date, time, sync_status FROM chore_records ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	stored, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	out := make([]core.Record, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Record)
	}
	return out, nil
}

// GetRecords returns the records with the given IDs, ordered by ID.
// Unknown IDs are ignored.
func (r *SQLiteRepository) GetRecords(ctx context.Context, ids []int64) ([]StoredRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT id, activity, person, date, time, sync_status FROM chore_records
		WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	return scanRecords(rows)
}

// GetPendingSyncRecords returns up to limit records not yet mirrored,
// oldest first. Records marked with a sync error are retried too.
func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, activity, person, date, time, sync_status FROM chore_records
		WHERE sync_status IN (?, ?) ORDER BY id ASC LIMIT ?`,
		SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	return scanRecords(rows)
}

// MarkSynced marks records as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids ...int64) error {
	return r.setStatus(ctx, SyncSynced, ids)
}

// MarkSyncError marks records whose mirroring failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, ids ...int64) error {
	if err := r.setStatus(ctx, SyncError, ids); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Records marked with sync error", "ids", ids)
	return nil
}

func (r *SQLiteRepository) setStatus(ctx context.Context, status string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+2)
	args = append(args, status, status)
	for _, id := range ids {
		args = append(args, id)
	}
	q := `UPDATE chore_records SET sync_status = ?, synced_at = CASE WHEN ? = 'synced' THEN CURRENT_TIMESTAMP ELSE synced_at END
		WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("mark records %s: %w", status, err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]StoredRecord, error) {
	defer rows.Close()
	out := []StoredRecord{}
	for rows.Next() {
		var (
			s          StoredRecord
			date, hhmm string
		)
		if err := rows.Scan(&s.ID, &s.Record.Activity, &s.Record.Person, &date, &hhmm, &s.SyncStatus); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		at, err := core.ParseTimestamp(date, hhmm)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", s.ID, err)
		}
		s.Record.At = at
		out = append(out, s)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
