package backend

import (
	"context"
	"time"

	"trastes/internal/sheets"
)

// Backend is a record store the HTTP server can read and write.
type Backend interface {
	sheets.RecordWriter
	sheets.RecordReader
}

type CleanupFunc func() error

// BackendResult is a constructed store plus what releases it.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// Excel
	ExcelPath string

	// SQLite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// CacheTTL puts a read cache in front of remote stores; 0 disables it.
	CacheTTL time.Duration
}

type BackendType string

const (
	ExcelBackend  BackendType = "excel"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case ExcelBackend, SheetsBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
