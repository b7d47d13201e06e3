package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration for the gateway server and the
// client-side tools.
type Config struct {
	// Server
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	LogLevel       string
	Env            string

	// Notifications
	SESRegion    string
	SESFromEmail string
	SESFromName  string
	TeacherEmail string

	// Client
	GatewayURL   string
	SessionFile  string
	LoginTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./jandoedu.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Env:            getEnv("ENV", "dev"),

		SESRegion:    getEnv("SES_REGION", "eu-west-2"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Jando EDU"),
		TeacherEmail: getEnv("TEACHER_EMAIL", ""),

		GatewayURL:   getEnv("GATEWAY_URL", "http://localhost:8080/exec"),
		SessionFile:  getEnv("SESSION_FILE", defaultSessionFile()),
		LoginTimeout: getSeconds("LOGIN_TIMEOUT", 20*time.Second),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSeconds reads a duration expressed in whole seconds
func getSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./jando_session.json"
	}
	return filepath.Join(dir, "jandoedu", "session.json")
}
