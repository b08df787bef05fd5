package api

import (
	"fmt"
	"os"
	"strings"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RabbitMQURL       string
	AuthSecret        string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// OptimisticLocking toggles compare-and-swap order writes. Default
	// on; set ORDER_OPTIMISTIC_LOCKING=false for last-write-wins.
	OptimisticLocking bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		AuthSecret:        strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OptimisticLocking: true,
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_OPTIMISTIC_LOCKING")); raw != "" {
		cfg.OptimisticLocking = isTruthy(raw)
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET must be set")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
