package config

import (
	"github.com/Skotchmaster/artisan_shop/pkg/config"
)

type Config struct {
	config.Config

	ESIndex string
	// Seed fills an empty catalog with sample data on start-up.
	Seed bool
}

func Load() Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "catalog"
	}

	base.MustHave("DATABASE_URL", "JWT_SECRET")

	return Config{
		Config:  base,
		ESIndex: config.EnvDefault("ES_INDEX", "products"),
		Seed:    config.EnvDefault("CATALOG_SEED", "false") == "true",
	}
}
