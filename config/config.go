package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr       string
	JWTSecret  string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	TickRate   int
}

// LoadConfig reads settings from the environment. JWT_SECRET and the DB_*
// variables are optional: without a secret the open /ws endpoint is used,
// without DB settings the session log is disabled.
func LoadConfig() *Config {
	cfg := &Config{
		Addr:       getEnv("ADDR", ":8000"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		TickRate:   60,
	}

	if v := os.Getenv("TICK_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickRate = n
		}
	}

	return cfg
}

// SessionLogEnabled reports whether the Postgres session log is configured.
func (c *Config) SessionLogEnabled() bool {
	return c.DBHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
