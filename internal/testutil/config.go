package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/bookrank/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles     bool
	NYTAPIKey          string
	PublishedDate      string
	NYTBaseURL         string
	OpenLibraryBaseURL string
	OpenLibraryRPS     int
	HTTPTimeout        time.Duration
	DBFile             string
	ReportDir          string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles:     config.OverwriteFiles,
		NYTAPIKey:          config.NYTAPIKey,
		PublishedDate:      config.PublishedDate,
		NYTBaseURL:         config.NYTBaseURL,
		OpenLibraryBaseURL: config.OpenLibraryBaseURL,
		OpenLibraryRPS:     config.OpenLibraryRPS,
		HTTPTimeout:        config.HTTPTimeout,
		DBFile:             config.DBFile,
		ReportDir:          config.ReportDir,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.NYTAPIKey = state.NYTAPIKey
	config.PublishedDate = state.PublishedDate
	config.NYTBaseURL = state.NYTBaseURL
	config.OpenLibraryBaseURL = state.OpenLibraryBaseURL
	config.OpenLibraryRPS = state.OpenLibraryRPS
	config.HTTPTimeout = state.HTTPTimeout
	config.DBFile = state.DBFile
	config.ReportDir = state.ReportDir
}

// ResetConfig saves the current config state and viper, and restores both
// when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so an unset key cannot be restored.
	})
}

// SetupTestCache points the response cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("cache", "test-cache.db")
	env.WriteFileString("cache/.keep", "")

	SetViperValue(t, "cache.dbfile", dbPath)
	SetViperValue(t, "cache.ttl", "24h")

	return dbPath
}
