package backend

import (
	"context"
	"fmt"

	"trastes/internal/adapters"
	"trastes/internal/amqp"
	"trastes/internal/cache"
	"trastes/internal/core"
	applog "trastes/internal/log"
	"trastes/internal/services"
	"trastes/internal/sheets/excel"
	gsheet "trastes/internal/sheets/google"
	"trastes/internal/sheets/memory"
	"trastes/internal/storage"
)

type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory logs as the backend component; a nil logger wraps slog.Default.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := f.logger.With(applog.FieldBackend, config.Type.String())
	switch config.Type {
	case ExcelBackend:
		return createExcelBackend(logger, config)
	case SQLiteBackend:
		return createSQLiteBackend(logger, config)
	case SheetsBackend:
		return createSheetsBackend(ctx, logger, config)
	case MemoryBackend:
		logger.Warn("Initialized memory backend; records are lost on restart")
		return &BackendResult{Backend: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func createExcelBackend(logger *applog.Logger, config Config) (*BackendResult, error) {
	store, err := excel.New(config.ExcelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize excel store: %w", err)
	}
	logger.Info("Initialized Excel backend", "path", store.Path())
	return &BackendResult{Backend: store}, nil
}

func createSQLiteBackend(logger *applog.Logger, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// a nil *amqp.Client must not reach the service as a non-nil interface
	var publisher services.SyncPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	service := services.NewRecordService(repo, publisher)
	adapter := adapters.NewSQLiteAdapter(repo, service)

	logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "amqp_enabled", publisher != nil)
	return &BackendResult{Backend: adapter, Cleanup: adapter.Close}, nil
}

func createSheetsBackend(ctx context.Context, logger *applog.Logger, config Config) (*BackendResult, error) {
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	if config.CacheTTL <= 0 {
		return &BackendResult{Backend: client}, nil
	}

	lru := cache.NewLRUCache[[]core.Record](1, config.CacheTTL)
	mgr := cache.NewManager()
	mgr.Register(lru)
	mgr.StartCleanup(config.CacheTTL)
	logger.Info("Read cache enabled", "ttl", config.CacheTTL)

	return &BackendResult{
		Backend: NewCachedBackend(client, lru),
		Cleanup: func() error { mgr.Stop(); return nil },
	}, nil
}
