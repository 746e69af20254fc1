package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Fireflies FirefliesConfig `mapstructure:"fireflies"`
	Google    GoogleConfig    `mapstructure:"google"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sync      SyncConfig      `mapstructure:"sync"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// FirefliesConfig holds Fireflies API configuration
type FirefliesConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// GoogleConfig holds Google Workspace credentials and identifiers shared
// by the Gmail, Sheets and Docs clients.
type GoogleConfig struct {
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	RefreshToken  string `mapstructure:"refresh_token"`
	UserEmail     string `mapstructure:"user_email"`
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	SheetName     string `mapstructure:"sheet_name"`
	UseIMAP       bool   `mapstructure:"use_imap"`
	IMAPHost      string `mapstructure:"imap_host"`
	IMAPPort      int    `mapstructure:"imap_port"`
	IMAPUser      string `mapstructure:"imap_user"`
	IMAPPassword  string `mapstructure:"imap_password"`
}

// StorageConfig selects where opportunity rows and documents live
type StorageConfig struct {
	// UseDatabase switches the configuration and document stores from
	// Google Sheets/Docs to the local MySQL database.
	UseDatabase bool `mapstructure:"use_database"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	DailyHour int `mapstructure:"daily_hour"`
}

// SyncConfig holds tunables for the sync window and result caps
type SyncConfig struct {
	LookbackDays   int `mapstructure:"lookback_days"`
	MaxTranscripts int `mapstructure:"max_transcripts"`
	MaxThreads     int `mapstructure:"max_threads"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("fireflies.endpoint", "https://api.fireflies.ai/graphql")

	viper.SetDefault("google.sheet_name", "Opportunity Tracker")
	viper.SetDefault("google.use_imap", false)
	viper.SetDefault("google.imap_host", "imap.gmail.com")
	viper.SetDefault("google.imap_port", 993)

	viper.SetDefault("storage.use_database", false)

	viper.SetDefault("scheduler.daily_hour", 8)

	viper.SetDefault("sync.lookback_days", 30)
	viper.SetDefault("sync.max_transcripts", 50)
	viper.SetDefault("sync.max_threads", 50)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Fireflies
	viper.BindEnv("fireflies.api_key", "FIREFLIES_API_KEY")
	viper.BindEnv("fireflies.endpoint", "FIREFLIES_ENDPOINT")

	// Google
	viper.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	viper.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")
	viper.BindEnv("google.refresh_token", "GOOGLE_REFRESH_TOKEN")
	viper.BindEnv("google.user_email", "GOOGLE_USER_EMAIL")
	viper.BindEnv("google.spreadsheet_id", "GOOGLE_SPREADSHEET_ID")
	viper.BindEnv("google.sheet_name", "GOOGLE_SHEET_NAME")
	viper.BindEnv("google.use_imap", "GOOGLE_USE_IMAP")
	viper.BindEnv("google.imap_host", "GOOGLE_IMAP_HOST")
	viper.BindEnv("google.imap_port", "GOOGLE_IMAP_PORT")
	viper.BindEnv("google.imap_user", "GOOGLE_IMAP_USER")
	viper.BindEnv("google.imap_password", "GOOGLE_IMAP_PASSWORD")

	// Storage
	viper.BindEnv("storage.use_database", "STORAGE_USE_DATABASE")

	// Scheduler
	viper.BindEnv("scheduler.daily_hour", "SCHEDULER_DAILY_HOUR")

	// Sync
	viper.BindEnv("sync.lookback_days", "SYNC_LOOKBACK_DAYS")
	viper.BindEnv("sync.max_transcripts", "SYNC_MAX_TRANSCRIPTS")
	viper.BindEnv("sync.max_threads", "SYNC_MAX_THREADS")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	// Google OAuth credentials are needed whenever any Google-backed
	// collaborator is in play. The Fireflies key is deliberately not
	// validated here: a missing key aborts a sync run, not startup.
	needsOAuth := !c.Storage.UseDatabase || !c.Google.UseIMAP
	if needsOAuth {
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.RefreshToken == "" {
			return fmt.Errorf("Google OAuth2 credentials are required")
		}
	}

	if !c.Storage.UseDatabase && c.Google.SpreadsheetID == "" {
		return fmt.Errorf("Google spreadsheet ID is required when not using the database store")
	}

	if c.Google.UseIMAP {
		if c.Google.IMAPUser == "" || c.Google.IMAPPassword == "" {
			return fmt.Errorf("IMAP credentials are required when using IMAP")
		}
	}

	if c.Scheduler.DailyHour < 0 || c.Scheduler.DailyHour > 23 {
		return fmt.Errorf("scheduler daily hour must be between 0 and 23")
	}

	if c.Sync.LookbackDays <= 0 {
		return fmt.Errorf("sync lookback days must be greater than 0")
	}

	return nil
}
