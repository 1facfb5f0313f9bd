package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the service
type Config struct {
	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	ServerPort       string
	ServiceName      string
	OTLPEndpoint     string
	WebhookURL       string
}

// LoadConfig reads the configuration from the environment, with an optional .env file
func LoadConfig() *Config {
	// .env file is optional, continue without it
	_ = godotenv.Load()

	return &Config{
		DatabaseUser:     getEnv("DATABASE_USER", "root"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "pass"),
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseName:     getEnv("DATABASE_NAME", "shop_db"),
		ServerPort:       getEnv("PORT", "8080"),
		ServiceName:      getEnv("SERVICE_NAME", "shop-backend"),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		WebhookURL:       getEnv("ORDER_WEBHOOK_URL", ""),
	}
}

// DatabaseDSN builds the connection string for the pgx pool
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&pool_max_conns=25&pool_min_conns=5",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
