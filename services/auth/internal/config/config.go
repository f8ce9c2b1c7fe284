package config

import (
	"github.com/Skotchmaster/artisan_shop/pkg/config"
)

type Config struct {
	config.Config

	// AdminEmail and AdminPassword describe the account promoted to admin on
	// start-up. Both empty disables the bootstrap.
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "auth"
	}

	base.MustHave("DATABASE_URL", "JWT_SECRET", "JWT_REFRESH_SECRET")

	cfg := Config{
		Config:        base,
		AdminEmail:    config.EnvDefault("ADMIN_EMAIL", ""),
		AdminPassword: config.EnvDefault("ADMIN_PASSWORD", ""),
	}
	if cfg.AdminEmail != "" {
		base.MustHave("ADMIN_PASSWORD")
	}
	return cfg
}
