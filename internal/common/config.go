package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	OCR       OCRConfig
	Extractor ExtractorConfig
	Notify    NotifyConfig
	Ingest    IngestConfig
}

// DatabaseConfig holds record-store configuration. Backend selects the
// persistence strategy: "postgres" appends to the extraction_records table,
// "workbook" appends to daily xlsx files under OutputDir.
type DatabaseConfig struct {
	Backend          string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	OutputDir        string
	DedupPath        string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	HistoryLimit   int
	RequestTimeout time.Duration
}

// OCRConfig holds OCR API client configuration
type OCRConfig struct {
	APIURL  string
	Timeout time.Duration
}

// ExtractorConfig holds field-extraction configuration
type ExtractorConfig struct {
	Identity    string
	LexiconPath string
}

// NotifyConfig holds NATS notification configuration. Empty URL disables it.
type NotifyConfig struct {
	NatsURL   string
	NatsToken string
}

// IngestConfig holds drop-folder watcher configuration
type IngestConfig struct {
	WatchDirs []string
	Debounce  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			Backend:          getEnv("RECORD_BACKEND", "workbook"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			OutputDir:        getEnv("OUTPUT_DIR", "./extracted"),
			DedupPath:        getEnv("DEDUP_DB_PATH", "./extracted/seen.db"),
		},
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":10000"),
			HistoryLimit:   getEnvAsInt("CHAT_HISTORY_LIMIT", 100),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 60*time.Second),
		},
		OCR: OCRConfig{
			APIURL:  getEnv("OCR_API_URL", ""),
			Timeout: getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Extractor: ExtractorConfig{
			Identity:    getEnv("EXTRACTOR_ID", "eligibility-tracker"),
			LexiconPath: getEnv("SENTIMENT_LEXICON_PATH", ""),
		},
		Notify: NotifyConfig{
			NatsURL:   getEnv("NATS_URL", ""),
			NatsToken: getEnv("NATS_TOKEN", ""),
		},
		Ingest: IngestConfig{
			Debounce: getEnvAsDuration("INGEST_DEBOUNCE", 500*time.Millisecond),
		},
	}
	if dirs := getEnv("WATCH_DIRS", ""); dirs != "" {
		cfg.Ingest.WatchDirs = splitList(dirs)
	}
	return cfg
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required when RECORD_BACKEND=postgres", ErrInvalidInput)
		}
	case "workbook":
		if c.Database.OutputDir == "" {
			return NewAppError("CONFIG_ERROR", "OUTPUT_DIR is required when RECORD_BACKEND=workbook", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "RECORD_BACKEND must be postgres or workbook", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
