package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Payment  PaymentConfig
	Ledger   LedgerConfig
	Breaker  BreakerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
	LogLevel   string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertTo    []string
}

type PaymentConfig struct {
	WebhookSecret string
	// AllowUnsigned accepts webhooks without a signature when no secret is
	// set. Local development only.
	AllowUnsigned bool
	AlertTopic    string
}

type LedgerConfig struct {
	Retention time.Duration
	CacheTTL  time.Duration
}

type BreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate rejects configurations that would leave an endpoint open.
func (c *Config) Validate() error {
	var errs []error
	if c.App.JwtSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Payment.WebhookSecret == "" && !c.Payment.AllowUnsigned {
		errs = append(errs, errors.New("PIX_WEBHOOK_SECRET is required unless PIX_WEBHOOK_ALLOW_UNSIGNED is set"))
	}
	if c.Payment.AllowUnsigned && c.IsProduction() {
		errs = append(errs, errors.New("PIX_WEBHOOK_ALLOW_UNSIGNED cannot be used in production"))
	}
	return errors.Join(errs...)
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Freight Broker"),
			AlertTo:    getEnvAsList("OPERATOR_ALERT_EMAILS"),
		},
		Payment: PaymentConfig{
			WebhookSecret: getEnv("PIX_WEBHOOK_SECRET", ""),
			AllowUnsigned: getEnvAsBool("PIX_WEBHOOK_ALLOW_UNSIGNED", false),
			AlertTopic:    getEnv("PAYMENT_ALERT_TOPIC", "PAYMENT_ALERTS"),
		},
		Ledger: LedgerConfig{
			Retention: getEnvAsDuration("LEDGER_RETENTION", 365*24*time.Hour),
			CacheTTL:  getEnvAsDuration("LEDGER_CACHE_TTL", 24*time.Hour),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			OpenTimeout:      getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// OtelEnabled mirrors the switch read by the tracer.
func OtelEnabled() bool {
	return getEnvAsBool("OTEL_ENABLED", false)
}
