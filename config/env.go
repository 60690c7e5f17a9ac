package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds process configuration read from the environment.
type Settings struct {
	Port        string `envconfig:"PORT" default:"8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// HoldTTL is how long a pending booking reserves capacity before the
	// sweeper releases it.
	HoldTTL   time.Duration `envconfig:"HOLD_TTL" default:"30m"`
	SweepCron string        `envconfig:"SWEEP_CRON" default:"*/10 * * * *"`

	PairingTTL time.Duration `envconfig:"PAIRING_TTL" default:"5m"`

	GatewaySecret string `envconfig:"GATEWAY_SECRET" default:"dev-gateway-secret"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
