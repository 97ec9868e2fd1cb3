package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port         string
	DBConn       string
	LogLevel     string
	JWTSecret    string
	RedisAddr    string
	RiskCacheTTL time.Duration

	TelegramToken   string
	TelegramChatID  int64
	TelegramAPIBase string

	TCMBURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	OwnerEmail   string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("RISK_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RISK_CACHE_TTL: %w", err)
	}
	chatID, err := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBConn:       getEnv("DB_CONN", "host=localhost port=5432 user=crm password=crm dbname=crm sslmode=disable"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RiskCacheTTL: ttl,

		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:  chatID,
		TelegramAPIBase: getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),

		TCMBURL: getEnv("TCMB_URL", "https://www.tcmb.gov.tr/kurlar/today.xml"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", ""),
		OwnerEmail:   getEnv("OWNER_EMAIL", ""),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
