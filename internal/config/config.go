package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Inventory  InventoryConfig
	Opname     OpnameConfig
	Monitoring MonitoringConfig
	Sheets     SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// InventoryConfig contains connection options for the retail backend API
// that owns item master data and system quantities.
type InventoryConfig struct {
	BaseURL  string
	APIToken string
}

// OpnameConfig holds tunables for the stock count session lifecycle.
type OpnameConfig struct {
	DraftDebounce time.Duration
}

// MonitoringConfig holds scheduler-related settings for the trend digest.
type MonitoringConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig configures the optional export of finalized counts to a
// Google spreadsheet. Export is disabled when SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	debounceMs, err := getenvInt("DRAFT_DEBOUNCE_MS", 800)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "opname"),
		},
		Inventory: InventoryConfig{
			BaseURL:  os.Getenv("INVENTORY_API_BASE_URL"),
			APIToken: os.Getenv("INVENTORY_API_TOKEN"),
		},
		Opname: OpnameConfig{
			DraftDebounce: time.Duration(debounceMs) * time.Millisecond,
		},
		Monitoring: MonitoringConfig{
			CronSchedule: getenvWithDefault("MONITOR_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Jakarta"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("EXPORT_SPREADSHEET_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Inventory.BaseURL == "" {
		return errors.New("INVENTORY_API_BASE_URL must be provided")
	}

	if c.Opname.DraftDebounce <= 0 {
		return errors.New("DRAFT_DEBOUNCE_MS must be positive")
	}

	if c.Monitoring.CronSchedule == "" {
		return errors.New("MONITOR_CRON_SCHEDULE must be provided")
	}
	if c.Monitoring.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// Sheets export is optional, but a spreadsheet id without credentials
	// cannot work.
	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when EXPORT_SPREADSHEET_ID is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
