package config

import (
	"log"
	"os"
	"strings"
)

// lookup returns the loaded value behind an env name. Names Config does not
// carry are read from the environment.
func (c Config) lookup(env string) string {
	switch env {
	case "DATABASE_URL":
		return c.DatabaseURL
	case "JWT_SECRET":
		return string(c.JWTAccessSecret)
	case "JWT_REFRESH_SECRET":
		return string(c.JWTRefreshSecret)
	case "AUTH_URL":
		return c.AuthHTTPURL
	case "CATALOG_URL":
		return c.CatalogHTTPURL
	case "KAFKA_BROKERS":
		return strings.Join(c.KafkaBrokers, ",")
	case "REDIS_ADDR":
		return c.RedisAddr
	case "ES_URL":
		return c.ESURL
	default:
		return strings.TrimSpace(os.Getenv(env))
	}
}

// Missing lists the given env names that ended up empty, in order.
func (c Config) Missing(envs ...string) []string {
	var out []string
	for _, env := range envs {
		if c.lookup(env) == "" {
			out = append(out, env)
		}
	}
	return out
}

// MustHave stops the service naming every missing variable at once.
func (c Config) MustHave(envs ...string) {
	if missing := c.Missing(envs...); len(missing) > 0 {
		log.Fatalf("%s: missing required env %s", c.ServiceName, strings.Join(missing, ", "))
	}
}
