package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("ORDER_EVENTS_TOPIC", "bookstore.orders")
		t.Setenv("RATE_LIMIT_RPS", "2.5")
		t.Setenv("RATE_LIMIT_BURST", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "disable", cfg.DBSSLMode)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "secret", cfg.JWTSecret)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, "bookstore.orders", cfg.OrderEventsTopic)
		assert.Equal(t, 2.5, cfg.RateLimitRPS)
		assert.Equal(t, 5, cfg.RateLimitBurst)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("ORDER_EVENTS_TOPIC", "")
		t.Setenv("RATE_LIMIT_RPS", "")
		t.Setenv("RATE_LIMIT_BURST", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Empty(t, cfg.KafkaBrokers)
		assert.Equal(t, "order-events", cfg.OrderEventsTopic)
		assert.Equal(t, float64(10), cfg.RateLimitRPS)
		assert.Equal(t, 20, cfg.RateLimitBurst)
	})

	t.Run("Missing DB host", func(t *testing.T) {
		t.Setenv("DB_HOST", "")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingDBHost)
	})

	t.Run("Invalid rate limit", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("RATE_LIMIT_RPS", "fast")

		_, err := Load()
		assert.Error(t, err)
	})
}
