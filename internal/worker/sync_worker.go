package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"trastes/internal/amqp"
	"trastes/internal/core"
	applog "trastes/internal/log"
	"trastes/internal/observability"
	"trastes/internal/sheets"
	"trastes/internal/storage"
)

// SyncStore is the part of the SQLite repository the worker needs.
type SyncStore interface {
	GetRecords(ctx context.Context, ids []int64) ([]storage.StoredRecord, error)
	GetPendingSyncRecords(ctx context.Context, limit int) ([]storage.StoredRecord, error)
	MarkSynced(ctx context.Context, ids ...int64) error
	MarkSyncError(ctx context.Context, ids ...int64) error
}

// SyncWorker mirrors records from SQLite to Google Sheets. The message
// consumer and the periodic sweep share one worker; mu lets only one of
// them read, append and mark at a time.
type SyncWorker struct {
	mu        sync.Mutex
	storage   SyncStore
	sheets    sheets.RecordWriter
	batchSize int
}

func NewSyncWorker(store SyncStore, sheets sheets.RecordWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{storage: store, sheets: sheets, batchSize: batchSize}
}

// HandleSyncMessage mirrors the records named in msg. Records already
// synced are skipped, so a redelivered message does not duplicate rows.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "message_id", msg.MessageID, "ids", msg.IDs)

	w.mu.Lock()
	defer w.mu.Unlock()

	stored, err := w.storage.GetRecords(ctx, msg.IDs)
	if err != nil {
		return fmt.Errorf("get records from storage: %w", err)
	}
	if len(stored) < len(msg.IDs) {
		slog.WarnContext(ctx, "Some records in sync message were not found",
			"requested", len(msg.IDs), "found", len(stored))
	}

	return w.syncToSheets(ctx, unsynced(stored))
}

// ProcessPendingRecords pushes one batch of pending or failed records.
// It covers messages that were lost or never published.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, err := w.storage.GetPendingSyncRecords(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))
	if err := w.syncToSheets(ctx, pending); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// StartupSyncCheck drains the pending backlog left over from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	total := 0
	for {
		n, err := w.ProcessPendingRecords(ctx)
		total += n
		if err != nil {
			return fmt.Errorf("startup sync after %d records: %w", total, err)
		}
		if n < w.batchSize {
			break
		}
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", total)
	return nil
}

func (w *SyncWorker) syncToSheets(ctx context.Context, stored []storage.StoredRecord) error {
	if len(stored) == 0 {
		return nil
	}
	ids := make([]int64, len(stored))
	recs := make([]core.Record, len(stored))
	for i, s := range stored {
		ids[i] = s.ID
		recs[i] = s.Record
	}

	ref, err := w.sheets.Append(ctx, recs...)
	if err != nil {
		observability.RowsSynced("error", len(ids))
		if markErr := w.storage.MarkSyncError(ctx, ids...); markErr != nil {
			applog.FromContext(ctx).WithComponent(applog.ComponentWorker).
				LogError(ctx, "Failed to mark sync error", markErr, applog.OpSync, applog.LogFields{"ids": ids})
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	observability.RowsSynced("ok", len(ids))
	// The rows are already in the sheet. Stop here so callers do not
	// append them again while the status cannot be saved.
	if err := w.storage.MarkSynced(ctx, ids...); err != nil {
		return fmt.Errorf("mark %d records synced after append at %s: %w", len(ids), ref, err)
	}

	slog.InfoContext(ctx, "Records mirrored", "ids", ids, "sheets_ref", ref)
	return nil
}

func unsynced(stored []storage.StoredRecord) []storage.StoredRecord {
	out := stored[:0:0]
	for _, s := range stored {
		if s.SyncStatus != storage.SyncSynced {
			out = append(out, s)
		}
	}
	return out
}
