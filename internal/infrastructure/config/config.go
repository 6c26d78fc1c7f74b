// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for both binaries
type Config struct {
	// App
	AppVersion string
	Company    string
	Timezone   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Console
	APIBaseURL     string
	APITimeout     time.Duration
	PollInterval   time.Duration
	OutboxSize     int
	OutboxWorkers  int
	Notifier       string
	MetricsPort    string
	TransactionTTL time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresURI string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQURL   string
	RabbitMQQueue string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailPollInterval time.Duration
	GmailLookbackDays int

	// WhatsApp
	WhatsAppEndpoint  string
	WhatsAppToken     string
	WhatsAppCompanyID string
	WhatsAppAgentID   string

	// Aviation Edge
	AviationEdgeURL string
	AviationEdgeKey string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		Company:    getEnv("COMPANY_NAME", "OLStar Transport"),
		Timezone:   getEnv("TIMEZONE", "Asia/Manila"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeout:     getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		PollInterval:   getEnvAsDuration("POLL_INTERVAL", 5*time.Second),
		OutboxSize:     getEnvAsInt("OUTBOX_SIZE", 16),
		OutboxWorkers:  getEnvAsInt("OUTBOX_WORKERS", 4),
		Notifier:       getEnv("NOTIFIER", "whatsapp"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		TransactionTTL: getEnvAsDuration("TRANSACTION_ID_TTL", 72*time.Hour),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "dispatch"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "schedule.notifications"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailPollInterval: time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,
		GmailLookbackDays: getEnvAsInt("GMAIL_LOOKBACK_DAYS", 2),

		WhatsAppEndpoint:  getEnv("WHATSAPP_ENDPOINT", ""),
		WhatsAppToken:     getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppCompanyID: getEnv("WHATSAPP_COMPANY_ID", ""),
		WhatsAppAgentID:   getEnv("WHATSAPP_AGENT_ID", ""),

		AviationEdgeURL: getEnv("AVIATION_EDGE_URL", "https://aviation-edge.com/v2/public/flights"),
		AviationEdgeKey: getEnv("AVIATION_EDGE_KEY", ""),
	}

	switch config.Notifier {
	case "whatsapp", "amqp", "none":
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", config.Notifier)
	}

	return config, nil
}

// Location resolves Timezone, falling back to a fixed UTC+8 zone when the
// tz database is missing from the host
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone(c.Timezone, 8*60*60)
	}
	return loc
}

// GmailEnabled reports whether mailbox import can run
func (c *Config) GmailEnabled() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
