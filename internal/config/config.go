package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string
	LogLevel string

	JWTSecret string
	JWTExpire time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	EmailNotifications bool
}

// NewConfig loads configuration from the environment, reading a local
// .env file first when one exists.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGODB_DB", "finance-tracker"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASS", ""),
		SenderEmail:        getEnv("EMAIL_FROM", "noreply@financetracker.com"),
		EmailNotifications: getEnv("ENABLE_EMAIL_NOTIFICATIONS", "false") == "true",
	}

	expire, err := time.ParseDuration(getEnv("JWT_EXPIRE", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	cfg.JWTExpire = expire

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EmailNotifications && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when email notifications are enabled")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
