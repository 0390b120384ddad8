package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	Secret              string
	HTTPPort            string
	DatabaseDSN         string
	CatalogPath         string
	RedisAddr           string
	RedisPassword       string
	RedisPrefix         string
	KafkaBrokers        []string
	KafkaTopic          string
	AllowedOrigins      []string
	LowStockThreshold   int
	ExpiryHorizonMonths int
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:pharmaflow.db"
	}

	return Config{
		Secret:              secret,
		HTTPPort:            port,
		DatabaseDSN:         dsn,
		CatalogPath:         getEnv("CATALOG_PATH", "assets/medicines.csv"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:         getEnv("REDIS_PREFIX", "pharma_"),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "pharmaflow-events"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LowStockThreshold:   getInt("LOW_STOCK_THRESHOLD", 10),
		ExpiryHorizonMonths: getInt("EXPIRY_HORIZON_MONTHS", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
