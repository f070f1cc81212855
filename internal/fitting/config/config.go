// Package config loads process settings from the environment and the static
// game-rule documents from the data directory.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Settings holds process configuration values.
type Settings struct {
	// Item catalog database
	DBPath    string
	CacheSize int

	// Directory holding modules.yaml, skills.yaml, skillplan.yaml,
	// categories.yaml and fits.dat
	DataDir string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads settings from environment variables.
func Load() Settings {
	return Settings{
		DBPath:    getEnv("FITTING_DB", "data/catalog.db"),
		CacheSize: getEnvInt("FITTING_CACHE_SIZE", 8192),
		DataDir:   getEnv("FITTING_DATA_DIR", "data"),
		LogFile:   getEnv("FITTING_LOG_FILE", "/tmp/fitting-server.log"),
		LogLevel:  parseLogLevel(getEnv("FITTING_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
