package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jasonoc/plato/internal/logger"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	AllowedUserID int64
	DB            DBConfig
	Redis         RedisConfig
	Google        GoogleConfig
	Logger        LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig is optional. When Host is empty the bot falls back to the
// in-memory state manager.
type RedisConfig struct {
	Host string
	Port string
}

// GoogleConfig holds the calendar credentials. The refresh token comes from a
// one-time OAuth consent done outside this process.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	Timezone     string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	allowedID, err := strconv.ParseInt(getEnvOrDefault("ALLOWED_USER_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ALLOWED_USER_ID: %w", err)
	}

	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		AllowedUserID: allowedID,
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "plato"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
			CalendarID:   getEnvOrDefault("GOOGLE_CALENDAR_ID", "primary"),
			Timezone:     getEnvOrDefault("CALENDAR_TIMEZONE", "Europe/Dublin"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

// Validate reports the config problems that would prevent the bot from
// starting. Google credentials are checked leniently because the bot can run
// with calendar sync disabled.
func (c *Config) Validate() []string {
	var problems []string
	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_BOT_TOKEN is not set")
	}
	if c.GeminiAPIKey == "" {
		problems = append(problems, "GEMINI_API_KEY is not set")
	}
	if c.AllowedUserID == 0 {
		problems = append(problems, "ALLOWED_USER_ID is not set")
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.RefreshToken == "" {
		problems = append(problems, "Google credentials incomplete — calendar sync disabled")
	}
	return problems
}
