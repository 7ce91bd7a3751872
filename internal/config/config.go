package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	// APIKeySecret keys the HMAC under which raw API keys are hashed
	// before storage. Rotating it invalidates every issued key.
	APIKeySecret string

	SendRatePerMinute int
	AttachmentDir     string

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	smtpTimeout, err := time.ParseDuration(getEnv("SMTP_TIMEOUT", "30s"))
	if err != nil {
		smtpTimeout = 30 * time.Second
	}

	sendRate, err := strconv.Atoi(getEnv("SEND_RATE_PER_MINUTE", "10"))
	if err != nil || sendRate <= 0 {
		sendRate = 10
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:       getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry: accessExpiry,

		APIKeySecret: getEnvOrPanic("API_KEY_SECRET"),

		SendRatePerMinute: sendRate,
		AttachmentDir:     getEnv("ATTACHMENT_DIR", "media/attachments"),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			Timeout:  smtpTimeout,
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
