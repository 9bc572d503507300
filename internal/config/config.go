package config

import (
	"errors"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Pre-shared key for the batch endpoint (X-API-Key header).
	APIKey string `envconfig:"API_KEY"`

	JWTSecret    string `envconfig:"JWT_SECRET"`
	JWTIssuer    string `envconfig:"JWT_ISS" default:"pix-payout-api"`
	JWTAudience  string `envconfig:"JWT_AUD"`
	JWTAccessTTL string `envconfig:"JWT_ACCESS_TTL" default:"15m"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC_PAYOUTS" default:"payouts.settled"`

	// Sliding-window policy per client address.
	RateLimitRPM int `envconfig:"RATE_LIMIT_RPM" default:"5"`

	// Probability [0,1] that the simulated settlement call succeeds.
	PaymentSuccessRate float64 `envconfig:"PAYMENT_SUCCESS_RATE" default:"0.8"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if c.APIKey == "" {
		return Config{}, errors.New("API_KEY is required")
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return Config{}, errors.New("PAYMENT_SUCCESS_RATE must be within [0,1]")
	}
	return c, nil
}

// KafkaEnabled reports whether event publishing is configured.
func (c Config) KafkaEnabled() bool {
	return strings.TrimSpace(c.KafkaBrokers) != ""
}

// BrokerList splits the comma-separated broker string.
func (c Config) BrokerList() []string {
	return strings.Split(c.KafkaBrokers, ",")
}
