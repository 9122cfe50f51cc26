package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	MediaPath    string // Base path for uploaded recipe images
	DBWaitTries  int
	DBWaitDelay  time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	tries, err := strconv.Atoi(getEnv("DB_WAIT_TRIES", "10"))
	if err != nil {
		return nil, err
	}

	delay, err := time.ParseDuration(getEnv("DB_WAIT_DELAY", "1s"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./recipes.db"),
		MediaPath:    getEnv("MEDIA_PATH", "./media"),
		DBWaitTries:  tries,
		DBWaitDelay:  delay,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
