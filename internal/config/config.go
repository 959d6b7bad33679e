package config

import (
	"os"
	"strconv"
	"strings"
)

// Settings holds process-level options read from the environment.
type Settings struct {
	ConfigPath string
	StaticDir  string
	CORSOrigin string
	History    bool
	Author     string
	LogLevel   string
	LogFormat  string
}

func Load() Settings {
	return Settings{
		ConfigPath: getenv("TRACKER_CONFIG", "config.json"),
		StaticDir:  getenv("TRACKER_STATIC_DIR", "./src/dist"),
		CORSOrigin: getenv("TRACKER_CORS_ORIGIN", "*"),
		History:    getenvBool("TRACKER_HISTORY", false),
		Author:     getenv("TRACKER_AUTHOR", "Initiative Tracker"),
		LogLevel:   getenv("TRACKER_LOG_LEVEL", "info"),
		LogFormat:  getenv("TRACKER_LOG_FORMAT", "text"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
