// Package config reads service configuration from the environment, loading
// a .env file first if one exists. Command-line flags override these values.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DSN is the database location: a postgres:// URL or a SQLite path.
	DSN string
	// LogPath is an optional log file written in addition to stdout/stderr.
	LogPath string
}

// Load reads the configuration from the environment. DATABASE_URL is
// honored as a fallback for the DSN.
func Load() Config {
	_ = godotenv.Load() // Load .env file if it exists.

	dsn := getEnv("INVENTURA_DSN", "")
	if dsn == "" {
		dsn = getEnv("DATABASE_URL", "inventura.sqlite3")
	}

	return Config{
		Addr:    getEnv("INVENTURA_ADDR", ":8080"),
		DSN:     dsn,
		LogPath: getEnv("INVENTURA_LOG", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
