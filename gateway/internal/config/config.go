package config

import (
	"os"

	"github.com/Skotchmaster/artisan_shop/pkg/config"
)

type Config struct {
	config.Config

	StorefrontURL string
	// SecureCookies marks the CSRF cookie Secure; on behind TLS.
	SecureCookies bool
}

func Load() Config {
	base := config.Load()
	if base.ServiceName == "" {
		base.ServiceName = "gateway"
	}

	base.MustHave("AUTH_URL", "CATALOG_URL", "STOREFRONT_URL", "JWT_SECRET")

	return Config{
		Config:        base,
		StorefrontURL: os.Getenv("STOREFRONT_URL"),
		SecureCookies: config.EnvDefault("SECURE_COOKIES", "false") == "true",
	}
}
