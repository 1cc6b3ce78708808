package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Report source
	Source SourceConfig

	// Trading calendar
	Calendar CalendarConfig

	// Scheduled refresh
	Refresh RefreshConfig

	// API rate limiting
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SourceConfig selects the report-log source and its parameters
type SourceConfig struct {
	Driver     string // postgres, csv, web
	CSVPath    string
	WebBaseURL string
	WebSymbols []string
}

// CalendarConfig holds trading-calendar parameters
type CalendarConfig struct {
	Holidays []time.Time
}

// RefreshConfig holds the scheduled report-log refresh parameters
type RefreshConfig struct {
	Enabled  bool
	Schedule string // cron expression with seconds
}

// APIConfig holds HTTP API parameters
type APIConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	holidays, err := parseHolidays(getEnv("CALENDAR_HOLIDAYS", ""))
	if err != nil {
		return nil, fmt.Errorf("parse CALENDAR_HOLIDAYS: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Source: SourceConfig{
			Driver:     getEnv("SOURCE_DRIVER", "csv"),
			CSVPath:    getEnv("SOURCE_CSV_PATH", "data/reports.csv"),
			WebBaseURL: getEnv("SOURCE_WEB_BASE_URL", ""),
			WebSymbols: splitList(getEnv("SOURCE_WEB_SYMBOLS", "")),
		},

		Calendar: CalendarConfig{
			Holidays: holidays,
		},

		Refresh: RefreshConfig{
			Enabled:  getEnvAsBool("REFRESH_ENABLED", true),
			Schedule: getEnv("REFRESH_SCHEDULE", "0 0 18 * * *"), // 6 PM daily
		},

		API: APIConfig{
			RateLimitRPS:   getEnvAsFloat("API_RATE_LIMIT_RPS", 20),
			RateLimitBurst: getEnvAsInt("API_RATE_LIMIT_BURST", 40),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Source.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when SOURCE_DRIVER is postgres")
		}
	case "csv":
		if c.Source.CSVPath == "" {
			return fmt.Errorf("SOURCE_CSV_PATH is required when SOURCE_DRIVER is csv")
		}
	case "web":
		if c.Source.WebBaseURL == "" {
			return fmt.Errorf("SOURCE_WEB_BASE_URL is required when SOURCE_DRIVER is web")
		}
	default:
		return fmt.Errorf("SOURCE_DRIVER must be one of: postgres, csv, web")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func parseHolidays(value string) ([]time.Time, error) {
	var holidays []time.Time
	for _, item := range splitList(value) {
		day, err := time.Parse("2006-01-02", item)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", item, err)
		}
		holidays = append(holidays, day)
	}
	return holidays, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
