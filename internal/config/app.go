package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Server    ServerConfig
	Oracle    OracleConfig
	Sessions  SessionConfig
	Log       LogConfig
	Telemetry TelemetryConfig

	// InterviewConfigPath points at the optional YAML interview catalog.
	InterviewConfigPath string
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

type SessionConfig struct {
	Backend       string
	SQLiteDSN     string
	MaxAge        time.Duration
	SweepInterval time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

type TelemetryConfig struct {
	Enabled bool
	Dir     string
}

const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:               getEnvAsInt("PORT", 8000),
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Oracle: *LoadOracleConfig(),
		Sessions: SessionConfig{
			Backend:       strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
			SQLiteDSN:     getEnv("SESSION_SQLITE_DSN", "file:sessions?mode=memory&cache=shared"),
			MaxAge:        time.Duration(getEnvAsInt("SESSION_MAX_AGE_HOURS", 24)) * time.Hour,
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled: getEnvAsBool("TELEMETRY_ENABLED", false),
			Dir:     getEnv("TELEMETRY_DIR", "logs"),
		},
		InterviewConfigPath: getEnv("INTERVIEW_CONFIG", "config/interview.yaml"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
