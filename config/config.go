package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Storage drivers
const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
)

// Config holds all configuration for the moderation bot
type Config struct {
	Telegram   TelegramConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Moderation ModerationConfig
	Logging    LoggingConfig
	Service    ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	// OwnerID is the operator allowed to use /admin and /stats. Zero disables them.
	OwnerID int64
}

// StorageConfig selects where tracking state is persisted
type StorageConfig struct {
	Driver   string
	FilePath string
}

// DatabaseConfig holds PostgreSQL configuration, used when Storage.Driver is postgres
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ModerationConfig holds pipeline tuning
type ModerationConfig struct {
	NoticeTTL      time.Duration
	RequestTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
	// Format is "console" for human-readable output or "json"
	Format string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config     *Config
	Telegram   *TelegramConfig
	Storage    *StorageConfig
	Database   *DatabaseConfig
	Moderation *ModerationConfig
	Logging    *LoggingConfig
	Service    *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:     cfg,
		Telegram:   &cfg.Telegram,
		Storage:    &cfg.Storage,
		Database:   &cfg.Database,
		Moderation: &cfg.Moderation,
		Logging:    &cfg.Logging,
		Service:    &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	ownerID, err := strconv.ParseInt(getEnv("BOT_OWNER_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_OWNER_ID: %w", err)
	}

	noticeTTL, err := time.ParseDuration(getEnv("MODERATION_NOTICE_TTL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODERATION_NOTICE_TTL: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("MODERATION_REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODERATION_REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			OwnerID:  ownerID,
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFile)),
			FilePath: getEnv("STORAGE_FILE", "bot_data.json"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "moderation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Moderation: ModerationConfig{
			NoticeTTL:      noticeTTL,
			RequestTimeout: requestTimeout,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "moderation-bot"),
			Port: getEnv("SERVICE_PORT", "8081"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	switch c.Storage.Driver {
	case StorageDriverFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("STORAGE_FILE is required for the file driver")
		}
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Moderation.NoticeTTL <= 0 {
		return fmt.Errorf("MODERATION_NOTICE_TTL must be positive")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
