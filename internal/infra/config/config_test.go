package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"STORAGE_CONNECTION_STRING", "AzureWebJobsStorage", "STORAGE_CONTAINER", "STORAGE_BLOB_NAME",
	"STORAGE_BACKEND", "BUSINESS_ID", "SERVICE_PROVIDER_ID", "SCHEDULING_API_URL", "HTTP_TIMEOUT",
	"CRON_SPEC", "TIMEZONE", "RUN_ON_STARTUP", "PAST_DUE_TOLERANCE", "LOG_LEVEL", "ENVIRONMENT",
}

func setRequired(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	t.Setenv("STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("STORAGE_CONTAINER", "watcher")
	t.Setenv("STORAGE_BLOB_NAME", "known-dates.json")
	t.Setenv("BUSINESS_ID", "213133")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendAzure, cfg.Storage.Backend)
	assert.Equal(t, "watcher", cfg.Storage.Container)
	assert.Equal(t, "known-dates.json", cfg.Storage.BlobName)
	assert.Equal(t, "213133", cfg.Source.BusinessID)
	assert.Empty(t, cfg.Source.ServiceProviderID)
	assert.Equal(t, DefaultSchedulingAPIURL, cfg.Source.URL)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "*/30 * * * *", cfg.CronSpec)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.RunOnStartup)
	assert.Equal(t, time.Minute, cfg.PastDueTolerance)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SERVICE_PROVIDER_ID", "42")
	t.Setenv("SCHEDULING_API_URL", "http://localhost:8080/dates")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("CRON_SPEC", "0 * * * *")
	t.Setenv("TIMEZONE", "America/Chicago")
	t.Setenv("RUN_ON_STARTUP", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "42", cfg.Source.ServiceProviderID)
	assert.Equal(t, "http://localhost:8080/dates", cfg.Source.URL)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "0 * * * *", cfg.CronSpec)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.True(t, cfg.RunOnStartup)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_AzureWebJobsStorageFallback(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_CONNECTION_STRING", "")
	t.Setenv("AzureWebJobsStorage", "DefaultEndpointsProtocol=https;AccountName=x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "DefaultEndpointsProtocol=https;AccountName=x", cfg.Storage.ConnectionString)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"STORAGE_CONNECTION_STRING", "STORAGE_CONTAINER", "STORAGE_BLOB_NAME", "BUSINESS_ID"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, key, cerr.Key)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"STORAGE_BACKEND":    "s3",
		"HTTP_TIMEOUT":       "soon",
		"TIMEZONE":           "Mars/Olympus",
		"RUN_ON_STARTUP":     "maybe",
		"PAST_DUE_TOLERANCE": "-1m",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := Load()
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, key, cerr.Key)
		})
	}
}
