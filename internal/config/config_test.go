package config_test

import (
	"testing"

	"github.com/cezarfuhr/pix-payout-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "k")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.RateLimitRPM)
	assert.Equal(t, 0.8, cfg.PaymentSuccessRate)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadSuccessRate(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1.5")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestKafkaBrokerList(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.BrokerList())
}
