// Package config loads runtime configuration for sshbridged from the
// environment (with .env support), mirroring how the rest of this codebase
// configures its processes.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings for the SSH bridge daemon.
type Config struct {
	// Env is a free-form deployment label ("development", "production").
	Env string
	// Version is the build version string, logged at startup.
	Version string
	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string
	// LogFormat is "json" or "pretty".
	LogFormat string

	// HTTPAddr is the loopback address the REST API binds to.
	HTTPAddr string
	// WSAddr is the loopback address the PTY WebSocket server binds to.
	WSAddr string

	// CORSAllowedOrigins lists origins allowed to call the REST API.
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, falling back to an .env
// file in the working directory when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("SSHBRIDGE_ENV", "development"),
		Version:            getEnv("SSHBRIDGE_VERSION", "0.1.0"),
		LogLevel:           getEnv("SSHBRIDGE_LOG_LEVEL", "info"),
		LogFormat:          getEnv("SSHBRIDGE_LOG_FORMAT", "json"),
		HTTPAddr:           getEnv("SSHBRIDGE_HTTP_ADDR", "127.0.0.1:8787"),
		WSAddr:             getEnv("SSHBRIDGE_WS_ADDR", "127.0.0.1:9001"),
		CORSAllowedOrigins: getEnvAsSlice("SSHBRIDGE_CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Simple CSV split (for more complex parsing, use a proper CSV library)
	var result []string
	current := ""
	for _, char := range valueStr {
		if char == ',' {
			if current != "" {
				result = append(result, current)
				current = ""
			}
		} else {
			current += string(char)
		}
	}
	if current != "" {
		result = append(result, current)
	}

	return result
}
