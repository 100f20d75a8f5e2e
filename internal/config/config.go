// Package config loads server configuration from the environment.
//
// A .env file in the working directory is loaded first if present
// (convenient for local development); real environment variables always
// take precedence in deployment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DBPath       string        // path to the SQLite database file
	LogLevel     slog.Level    // minimum log level
	ReadTimeout  time.Duration // per-request read timeout
	WriteTimeout time.Duration // per-request write timeout

	JWTSecret    string // HMAC secret for session tokens
	SignInSecret string // HMAC secret shared with the sign-in message signer

	// OAuth code-exchange settings for the Farcaster identity provider.
	ProviderClientID     string
	ProviderClientSecret string
	ProviderAuthURL      string
	ProviderTokenURL     string
	ProviderUserURL      string
	ProviderCallbackURL  string

	AdminKeyHash string // bcrypt hash guarding the admin repair endpoint
}

// Load reads configuration from the environment (and .env, if present).
func Load() *Config {
	// Missing .env is not an error — deployment uses real env vars.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnvInt("PORT", 8080),
		DBPath:       getEnv("DB_PATH", "data/placelist.db"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 15*time.Second),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		SignInSecret: getEnv("SIGNIN_SECRET", ""),

		ProviderClientID:     getEnv("PROVIDER_CLIENT_ID", ""),
		ProviderClientSecret: getEnv("PROVIDER_CLIENT_SECRET", ""),
		ProviderAuthURL:      getEnv("PROVIDER_AUTH_URL", "https://app.neynar.com/login"),
		ProviderTokenURL:     getEnv("PROVIDER_TOKEN_URL", "https://api.neynar.com/oauth/token"),
		ProviderUserURL:      getEnv("PROVIDER_USER_URL", "https://api.neynar.com/v2/farcaster/user/me"),
		ProviderCallbackURL:  getEnv("PROVIDER_CALLBACK_URL", ""),

		AdminKeyHash: getEnv("ADMIN_KEY_HASH", ""),
	}
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

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
