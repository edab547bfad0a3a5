// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	JWTExpiry   int

	// UI timers
	WelcomeDelay  time.Duration
	ToastDuration time.Duration

	// Sessions idle longer than this are torn down by the sweeper
	SessionIdleTimeout time.Duration

	// Email configuration (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	CORSOrigins    []string
	MetricsEnabled bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("API_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:   getEnvInt("JWT_EXPIRY", 24),

		WelcomeDelay:  getEnvDuration("WELCOME_DELAY", 2500*time.Millisecond),
		ToastDuration: getEnvDuration("TOAST_DURATION", 3*time.Second),

		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),

		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@bvcoe.acm.org"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "ACM BVCOE"),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

// EmailEnabled reports whether decision emails can be delivered.
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
