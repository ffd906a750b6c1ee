package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trastes/internal/core"
	"trastes/internal/storage"
)

// RecordStore is the local write side of the SQLite backend.
type RecordStore interface {
	Insert(ctx context.Context, records ...core.Record) ([]int64, error)
	Close() error
}

// SyncPublisher announces stored record IDs to the mirror worker.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, ids ...int64) error
	Close() error
}

// RecordService saves records locally first and then asks the worker to
// mirror them. The local save is authoritative; a failed publish only
// leaves the rows pending for the periodic sweep.
type RecordService struct {
	store     RecordStore
	publisher SyncPublisher
}

// NewRecordService wires a store and an optional publisher (nil disables
// the sync notification).
func NewRecordService(store RecordStore, publisher SyncPublisher) *RecordService {
	return &RecordService{store: store, publisher: publisher}
}

func (s *RecordService) CreateRecords(ctx context.Context, records ...core.Record) (string, error) {
	ids, err := s.store.Insert(ctx, records...)
	if err != nil {
		return "", fmt.Errorf("save records: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher, records stay pending", "ids", ids)
	} else if err := s.publisher.PublishRecordSync(ctx, ids...); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "ids", ids, "error", err)
	}

	return storage.RowRef(ids), nil
}

func (s *RecordService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
