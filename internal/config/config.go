package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port      int
	AssetsDir string

	// Database
	DatabaseURL string

	// Ingestion
	DragontailDir string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:          getEnvInt("PORT", 3000),
		AssetsDir:     getEnv("ASSETS_DIR", "assets"),
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL()),
		DragontailDir: getEnv("DRAGONTAIL_DIR", "dragontail"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// defaultDatabaseURL composes the deployment DSN. The stock deployment runs
// postgres under the "database" hostname with a fixed user and database
// name; only the password varies.
func defaultDatabaseURL() string {
	password := getEnv("DATABASE_PASSWORD", "default_password")
	return fmt.Sprintf("postgres://draft_together:%s@database/draft_together", password)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
