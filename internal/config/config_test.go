package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "sync",
			Password: "secret",
			DBName:   "opportunity_sync",
		},
		Google: GoogleConfig{
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
			RefreshToken:  "refresh-token",
			SpreadsheetID: "spreadsheet-id",
			SheetName:     "Opportunity Tracker",
		},
		Scheduler: SchedulerConfig{DailyHour: 8},
		Sync:      SyncConfig{LookbackDays: 30, MaxTranscripts: 50, MaxThreads: 50},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.User = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.DBName = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingGoogleCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Google.RefreshToken = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingSpreadsheetID(t *testing.T) {
	cfg := validConfig()
	cfg.Google.SpreadsheetID = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingFirefliesKeyIsAllowed(t *testing.T) {
	// A missing Fireflies key aborts a sync run, not startup.
	cfg := validConfig()
	cfg.Fireflies.APIKey = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateDatabaseStoreWithIMAPNeedsNoOAuth(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.UseDatabase = true
	cfg.Google.UseIMAP = true
	cfg.Google.IMAPUser = "sync@example.com"
	cfg.Google.IMAPPassword = "app-password"
	cfg.Google.ClientID = ""
	cfg.Google.ClientSecret = ""
	cfg.Google.RefreshToken = ""
	cfg.Google.SpreadsheetID = ""

	assert.NoError(t, cfg.Validate())
}

func TestValidateIMAPRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Google.UseIMAP = true
	assert.Error(t, cfg.Validate())
}

func TestValidateDailyHourRange(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.DailyHour = 24
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Scheduler.DailyHour = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Scheduler.DailyHour = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidateLookbackDays(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.LookbackDays = 0
	assert.Error(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	cfg := validConfig()
	dsn := cfg.Database.GetDSN()
	assert.Equal(t, "sync:secret@tcp(localhost:3306)/opportunity_sync?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}
