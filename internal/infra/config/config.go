package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendAzure    = "azure"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
)

const DefaultSchedulingAPIURL = "https://www.vagaro.com/us02/websiteapi/homepage/getavailabledates"

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Key, e.Reason)
}

func missing(key string) error {
	return &ConfigError{Key: key, Reason: "is not set"}
}

func invalid(key string, err error) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf("is invalid: %v", err)}
}

// StorageConfig addresses the blob holding the known dates.
type StorageConfig struct {
	Backend          string
	ConnectionString string
	Container        string
	BlobName         string
}

// SourceConfig describes the remote scheduling API request.
type SourceConfig struct {
	URL               string
	BusinessID        string
	ServiceProviderID string // optional, sent as an empty spID when unset
	Timeout           time.Duration
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	Storage          StorageConfig
	Source           SourceConfig
	CronSpec         string
	Location         *time.Location
	RunOnStartup     bool
	PastDueTolerance time.Duration
	LogLevel         string
	Environment      string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Storage.ConnectionString = os.Getenv("STORAGE_CONNECTION_STRING")
	if cfg.Storage.ConnectionString == "" {
		// Azure Functions hosts expose the default account under this name.
		cfg.Storage.ConnectionString = os.Getenv("AzureWebJobsStorage")
	}
	if cfg.Storage.ConnectionString == "" {
		return nil, missing("STORAGE_CONNECTION_STRING")
	}

	cfg.Storage.Container = strings.TrimSpace(os.Getenv("STORAGE_CONTAINER"))
	if cfg.Storage.Container == "" {
		return nil, missing("STORAGE_CONTAINER")
	}

	cfg.Storage.BlobName = strings.TrimSpace(os.Getenv("STORAGE_BLOB_NAME"))
	if cfg.Storage.BlobName == "" {
		return nil, missing("STORAGE_BLOB_NAME")
	}

	cfg.Storage.Backend = strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	switch cfg.Storage.Backend {
	case "":
		cfg.Storage.Backend = BackendAzure
	case BackendAzure, BackendPostgres, BackendSQLite, BackendFile:
	default:
		return nil, invalid("STORAGE_BACKEND", fmt.Errorf("unknown backend %q", cfg.Storage.Backend))
	}

	cfg.Source.BusinessID = strings.TrimSpace(os.Getenv("BUSINESS_ID"))
	if cfg.Source.BusinessID == "" {
		return nil, missing("BUSINESS_ID")
	}
	cfg.Source.ServiceProviderID = strings.TrimSpace(os.Getenv("SERVICE_PROVIDER_ID"))

	cfg.Source.URL = os.Getenv("SCHEDULING_API_URL")
	if cfg.Source.URL == "" {
		cfg.Source.URL = DefaultSchedulingAPIURL
	}

	cfg.Source.Timeout, err = durationEnv("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.CronSpec = os.Getenv("CRON_SPEC")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "*/30 * * * *" // Default: every 30 minutes
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, invalid("TIMEZONE", err)
	}

	if v := os.Getenv("RUN_ON_STARTUP"); v != "" {
		cfg.RunOnStartup, err = strconv.ParseBool(v)
		if err != nil {
			return nil, invalid("RUN_ON_STARTUP", err)
		}
	}

	cfg.PastDueTolerance, err = durationEnv("PAST_DUE_TOLERANCE", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, invalid(key, err)
	}
	if d <= 0 {
		return 0, invalid(key, fmt.Errorf("must be positive"))
	}
	return d, nil
}
