package common

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported stock store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
	Export     ExportConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// ExtractionConfig bounds the lookahead windows of the order export scan
// and names the external PDF text converter.
type ExtractionConfig struct {
	OrderIDLookahead     int
	HeaderLookahead      int
	ContinuationMaxWords int
	PDFConverter         string
	ConverterTimeout     time.Duration
	Parallelism          int
}

// IngestConfig configures the inbox watcher used by the daemon.
type IngestConfig struct {
	InboxDir  string
	Debounce  time.Duration
	Workers   int
	QueueSize int
}

// ExportConfig holds report output settings.
type ExportConfig struct {
	OutputDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", DriverPostgres),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			AutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Extraction: ExtractionConfig{
			OrderIDLookahead:     getEnvAsInt("RIBBON_ORDER_ID_LOOKAHEAD", 50),
			HeaderLookahead:      getEnvAsInt("RIBBON_HEADER_LOOKAHEAD", 200),
			ContinuationMaxWords: getEnvAsInt("RIBBON_CONTINUATION_MAX_WORDS", 5),
			PDFConverter:         getEnv("PDF_CONVERTER", "pdftotext"),
			ConverterTimeout:     getEnvAsDuration("PDF_CONVERTER_TIMEOUT", 30*time.Second),
			Parallelism:          getEnvAsInt("RIBBON_PARALLELISM", 4),
		},
		Ingest: IngestConfig{
			InboxDir:  getEnv("INBOX_DIR", ""),
			Debounce:  getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
			Workers:   getEnvAsInt("INGEST_WORKERS", 2),
			QueueSize: getEnvAsInt("INGEST_QUEUE_SIZE", 64),
		},
		Export: ExportConfig{
			OutputDir: getEnv("EXPORT_DIR", "./out"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("DB_DRIVER %q is not supported", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	e := c.Extraction
	if e.OrderIDLookahead < 0 || e.HeaderLookahead < 0 || e.ContinuationMaxWords < 0 {
		return NewAppError("CONFIG_ERROR", "extraction limits must not be negative", ErrInvalidInput)
	}
	if e.Parallelism < 1 {
		return NewAppError("CONFIG_ERROR", "RIBBON_PARALLELISM must be at least 1", ErrInvalidInput)
	}
	if c.Ingest.Workers < 1 || c.Ingest.QueueSize < 1 {
		return NewAppError("CONFIG_ERROR", "INGEST_WORKERS and INGEST_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
