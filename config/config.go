package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GoEnv    string
	LogLevel string

	Auth0Domain   string
	Auth0Audience string

	// Spreadsheet backing store
	SpreadsheetID         string
	LiveTab               string
	HistoryTab            string
	GoogleCredentialsFile string

	// All calendar-day math (view filters, report buckets) happens in this
	// timezone, never in the server's local zone.
	ReferenceTimezone  string
	CacheWindowSeconds int

	// Printer dispatch. Mode is one of LAN, CLOUD, MOCK.
	PrinterMode       string
	PrinterAddr       string
	PrinterWebhookURL string
	// PrinterDispatchTimeoutSeconds bounds a print job, not the
	// reachability probe, which keeps its own fixed short deadline.
	PrinterDispatchTimeoutSeconds int

	PrintHistoryFile string

	// PDF archival storage ("drive" or "s3")
	StorageBackend        string
	DriveIncomingFolderID string
	DriveUpdatingFolderID string
	AWSRegion             string
	AWSS3Bucket           string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string

	// Hour of day (reference timezone) at which the archival sweep runs.
	ArchiveHour int

	WatcherIntervalSeconds int
}

var currentConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		Port:     getEnv("PORT", "8080"),
		GoEnv:    getEnv("GO_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),

		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		LiveTab:               getEnv("LIVE_TAB", "Orders"),
		HistoryTab:            getEnv("HISTORY_TAB", "OrderHistory"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),

		ReferenceTimezone:  getEnv("REFERENCE_TIMEZONE", "America/New_York"),
		CacheWindowSeconds: getEnvInt("CACHE_WINDOW_SECONDS", 30),

		PrinterMode:       getEnv("PRINTER_MODE", "MOCK"),
		PrinterAddr:       getEnv("PRINTER_ADDR", ""),
		PrinterWebhookURL: getEnv("PRINTER_WEBHOOK_URL", ""),

		PrinterDispatchTimeoutSeconds: getEnvInt("PRINTER_DISPATCH_TIMEOUT_SECONDS", 30),

		PrintHistoryFile: getEnv("PRINT_HISTORY_FILE", "print_history.json"),

		StorageBackend:        getEnv("STORAGE_BACKEND", "drive"),
		DriveIncomingFolderID: getEnv("DRIVE_INCOMING_FOLDER_ID", ""),
		DriveUpdatingFolderID: getEnv("DRIVE_UPDATING_FOLDER_ID", ""),
		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),

		ArchiveHour: getEnvInt("ARCHIVE_HOUR", 23),

		WatcherIntervalSeconds: getEnvInt("WATCHER_INTERVAL_SECONDS", 60),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	currentConfig = config
	return config, nil
}

// Reload re-reads the environment and replaces the current configuration.
// Printer settings are picked up here once instead of being read from disk
// on every request.
func Reload() (*Config, error) {
	return Load()
}

// GetConfig returns the currently loaded configuration
func GetConfig() *Config {
	return currentConfig
}

// SetConfig replaces the current configuration (primarily for testing)
func SetConfig(cfg *Config) {
	currentConfig = cfg
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" && !c.IsTest() {
		return fmt.Errorf("SPREADSHEET_ID is required")
	}
	switch c.PrinterMode {
	case "LAN", "CLOUD", "MOCK":
	default:
		return fmt.Errorf("PRINTER_MODE must be LAN, CLOUD or MOCK, got %q", c.PrinterMode)
	}
	switch c.StorageBackend {
	case "drive", "s3":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be drive or s3, got %q", c.StorageBackend)
	}
	if c.ArchiveHour < 0 || c.ArchiveHour > 23 {
		return fmt.Errorf("ARCHIVE_HOUR must be between 0 and 23")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether the Auth0 JWT middleware should be installed
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
