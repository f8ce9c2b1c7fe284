package config

import (
	"time"

	"github.com/Skotchmaster/artisan_shop/pkg/config"
)

type Config struct {
	config.Config

	// CartPollInterval is how often an open cart stream re-reads the slot on
	// top of storage notifications. Zero disables polling.
	CartPollInterval time.Duration
	// CartTTL expires idle carts in Redis. Zero keeps them forever.
	CartTTL time.Duration
}

func Load() Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "storefront"
	}

	base.MustHave("CATALOG_URL", "JWT_SECRET")

	return Config{
		Config:           base,
		CartPollInterval: config.EnvDurationDefault("CART_POLL_INTERVAL", 2*time.Second),
		CartTTL:          config.EnvDurationDefault("CART_TTL", 30*24*time.Hour),
	}
}
