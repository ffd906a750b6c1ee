package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trastes/internal/core"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string
	LogLimit int
	CacheTTL time.Duration

	// Roster
	Timezone   string
	Activities string
	People     string
	BothLabel  string

	// Charts
	ChartPalette string

	// Storage
	DataBackend  string
	ExcelPath    string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration
	// WorkerMetricsAddr serves the worker's /metrics; empty disables it.
	WorkerMetricsAddr string

	// parseErrors holds variables that were set but could not be parsed.
	parseErrors []string
}

var validBackends = []string{"excel", "sheets", "sqlite", "memory"}

func Load() *Config {
	credsFile := getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	if credsFile == "" {
		credsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	var parseErrors []string
	bothLabel, ok := os.LookupEnv("TRASTES_BOTH_LABEL")
	if !ok {
		bothLabel = "Beide"
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogLimit: getEnvInt("LOG_LIMIT", 5, &parseErrors),
		CacheTTL: getEnvDuration("CACHE_TTL", 15*time.Second, &parseErrors),

		Timezone:   getEnv("TRASTES_TIMEZONE", "Europe/Amsterdam"),
		Activities: getEnv("TRASTES_ACTIVITIES", "Afgewassen:🧽,Afgedroogd:🍽️,Gekookt:🍳"),
		People:     getEnv("TRASTES_PEOPLE", "Nelson,Monze"),
		BothLabel:  bothLabel,

		ChartPalette: getEnv("CHART_PALETTE", ""),

		DataBackend:  getEnv("DATA_BACKEND", "excel"),
		ExcelPath:    getEnv("EXCEL_PATH", "trastes.xlsx"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/trastes.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "trastes"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Trastes"),
		GoogleCredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleCredentialsFile: credsFile,

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 50, &parseErrors),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", time.Minute, &parseErrors),

		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),

		parseErrors: parseErrors,
	}
}

// Roster builds the closed activity and people sets.
func (c *Config) Roster() (core.Roster, error) {
	r := core.Roster{Activities: core.ParseActivities(c.Activities), People: core.ParseList(c.People), Both: strings.TrimSpace(c.BothLabel)}
	return r, r.Validate()
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	errors := append([]string(nil), c.parseErrors...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.LogLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid log limit %d: must be 0 (all) or more", c.LogLimit))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must not be negative", c.CacheTTL))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.Timezone, err))
	}
	if _, err := c.Roster(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid roster: %v", err))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "excel":
		if c.ExcelPath == "" {
			errors = append(errors, "Excel path cannot be empty when using excel backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case "sheets":
		errors = append(errors, c.validateGoogle()...)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks what the sync worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path is required for the sync worker")
	}
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the sync worker")
	}
	errors = append(errors, c.validateGoogle()...)
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateGoogle() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsFile == "" {
		errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided")
	}
	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleCredentialsFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt keeps the default when the variable is unset. A value that
// does not parse is recorded in errs and reported by Validate.
func getEnvInt(key string, defaultValue int, errs *[]string) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid %s '%s': must be a number", key, value))
		return defaultValue
	}
	return i
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid %s '%s': must be a duration such as 30s", key, value))
		return defaultValue
	}
	return d
}
