package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port        string
	Debug       bool
	MaxUploadMB int

	// Storage configuration
	StorageBackend   string // "local", "azure" or "minio"
	LocalStorageDir  string
	StorageAccount   string
	StorageContainer string
	MinioEndpoint    string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioBucket      string
	MinioUseSSL      bool

	// Optional Postgres index of finished reports
	DatabaseURL string

	// Timeline events: optional remote provider, and per-minute scene
	// events when a session has none
	TimelineServiceURL string
	SyntheticTimeline  bool

	// Analysis tuning
	PeakPercentile      float64
	PeakLimit           int
	ExamplesPerCategory int
	TopKeywords         int

	// Retention
	RetentionDays     int
	RetentionSchedule string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Debug:       getBoolEnv("DEBUG", false),
		MaxUploadMB: getIntEnv("MAX_UPLOAD_MB", 500),

		StorageBackend:   getEnv("STORAGE_BACKEND", "local"),
		LocalStorageDir:  getEnv("LOCAL_STORAGE_DIR", "./data"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "broadcasts"),
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:      getEnv("MINIO_BUCKET", "broadcasts"),
		MinioUseSSL:      getBoolEnv("MINIO_USE_SSL", false),

		DatabaseURL:        getEnv("DATABASE_URL", ""),
		TimelineServiceURL: getEnv("TIMELINE_SERVICE_URL", ""),
		SyntheticTimeline:  getBoolEnv("SYNTHETIC_TIMELINE", false),

		PeakPercentile:      getFloatEnv("PEAK_PERCENTILE", 75),
		PeakLimit:           getIntEnv("PEAK_LIMIT", 5),
		ExamplesPerCategory: getIntEnv("EXAMPLES_PER_CATEGORY", 10),
		TopKeywords:         getIntEnv("TOP_KEYWORDS", 20),

		RetentionDays:     getIntEnv("RETENTION_DAYS", 30),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 0 3 * * *"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and local storage.
func Default() *Config {
	return &Config{
		Port:                "8080",
		MaxUploadMB:         500,
		StorageBackend:      "local",
		LocalStorageDir:     "./data",
		PeakPercentile:      75,
		PeakLimit:           5,
		ExamplesPerCategory: 10,
		TopKeywords:         20,
		RetentionDays:       30,
		RetentionSchedule:   "0 0 3 * * *",
		SMTPPort:            587,
	}
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "local":
		if c.LocalStorageDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR is required for local storage")
		}
	case "azure":
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required for azure storage")
		}
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'local', 'azure' or 'minio'")
	}

	if c.PeakPercentile <= 0 || c.PeakPercentile > 100 {
		return fmt.Errorf("PEAK_PERCENTILE must be in (0, 100]")
	}

	if c.PeakLimit <= 0 {
		return fmt.Errorf("PEAK_LIMIT must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
