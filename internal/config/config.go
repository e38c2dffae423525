package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	KafkaBrokers     []string
	OrderEventsTopic string

	RateLimitRPS   float64
	RateLimitBurst int
}

var ErrMissingDBHost = errors.New("DB_HOST is not set")

// LoadConfig loads configuration and stops the process when it is unusable.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           os.Getenv("DB_PORT"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		AppPort:          getEnv("APP_PORT", "8080"),
		AppEnv:           os.Getenv("APP_ENV"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order-events"),
		RateLimitRPS:     10,
		RateLimitBurst:   20,
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, errors.New("RATE_LIMIT_RPS must be a positive number")
		}
		cfg.RateLimitRPS = rps
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, errors.New("RATE_LIMIT_BURST must be a positive integer")
		}
		cfg.RateLimitBurst = burst
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
