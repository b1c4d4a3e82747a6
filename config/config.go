package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	Environment string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	DuitkuMerchantCode string
	DuitkuAPIKey       string
	DuitkuEnv          string

	FlipSecretKey       string
	FlipValidationToken string
	FlipEnv             string

	// AppURL is the frontend origin with no path. Gateway adapters append
	// /payment/status/<orderID> to it themselves.
	AppURL      string
	CallbackURL string

	WhatsAppAPIURL string
	WhatsAppToken  string

	// EventBackend selects where reconciliation events go: "kafka" or "sns".
	EventBackend       string
	KafkaBrokers       string
	KafkaTopic         string
	PaymentSNSTopicARN string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8087"),
		Environment: getEnv("ENVIRONMENT", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Jakarta"),

		DuitkuMerchantCode: os.Getenv("DUITKU_MERCHANT_CODE"),
		DuitkuAPIKey:       os.Getenv("DUITKU_API_KEY"),
		DuitkuEnv:          getEnv("DUITKU_ENV", "sandbox"),

		FlipSecretKey:       os.Getenv("FLIP_SECRET_KEY"),
		FlipValidationToken: os.Getenv("FLIP_VALIDATION_TOKEN"),
		FlipEnv:             getEnv("FLIP_ENV", "sandbox"),

		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		CallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),

		WhatsAppAPIURL: os.Getenv("WHATSAPP_API_URL"),
		WhatsAppToken:  os.Getenv("WHATSAPP_API_TOKEN"),

		EventBackend:       getEnv("EVENT_BACKEND", "kafka"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:         getEnv("KAFKA_PAYMENT_TOPIC", "payment-events"),
		PaymentSNSTopicARN: getEnv("PAYMENT_SNS_TOPIC_ARN", "arn:aws:sns:eu-west-2:000000000000:payment-events"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("missing required postgres environment variables")
	}
	if cfg.DuitkuMerchantCode == "" || cfg.DuitkuAPIKey == "" {
		return nil, fmt.Errorf("missing required duitku environment variables")
	}
	if cfg.FlipSecretKey == "" {
		return nil, fmt.Errorf("missing required flip environment variables")
	}
	if cfg.CallbackURL == "" {
		return nil, fmt.Errorf("PAYMENT_CALLBACK_URL is required")
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func (c *Config) DuitkuBaseURL() string {
	if c.DuitkuEnv == "production" {
		return "https://passport.duitku.com"
	}
	return "https://sandbox.duitku.com"
}

func (c *Config) FlipBaseURL() string {
	if c.FlipEnv == "production" {
		return "https://bigflip.id/api/v3"
	}
	return "https://bigflip.id/big_sandbox_api/v3"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
