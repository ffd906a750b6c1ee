package adapters

import (
	"context"

	"trastes/internal/core"
	"trastes/internal/services"
	"trastes/internal/storage"
)

// SQLiteAdapter exposes the SQLite + AMQP backend through the
// sheets.RecordWriter and sheets.RecordReader ports, so the HTTP layer
// does not know which backend it talks to.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage, service: service}
}

// Append implements sheets.RecordWriter
func (a *SQLiteAdapter) Append(ctx context.Context, records ...core.Record) (string, error) {
	return a.service.CreateRecords(ctx, records...)
}

// ReadAll implements sheets.RecordReader
func (a *SQLiteAdapter) ReadAll(ctx context.Context) ([]core.Record, error) {
	return a.storage.ReadAll(ctx)
}

// Close releases the database and the broker connection.
func (a *SQLiteAdapter) Close() error {
	return a.service.Close()
}
