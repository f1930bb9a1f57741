package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

type Config struct {
	Issuer          string        // Issuer claim for tokens (default: accounts)
	TokenSecret     string        // Optional: HS256 secret, at least 32 bytes
	TokenSecretFile string        // Optional: file holding the secret, generated on first run outside prod
	TokenTTL        time.Duration // Session token lifetime (default: 24h)

	Store        string // User directory driver (memory, sqlite) (default: memory)
	DatabaseFile string // Path to SQLite database file (default: ./accounts.db)

	PasswordHasher string // Password hashing algorithm (argon2id, bcrypt) (default: argon2id)
	BcryptCost     int    // bcrypt work factor (default: 10)
	PepperFile     string // Optional: file containing pepper for argon2id hashing

	AllowAdminSignup bool   // Honor isAdmin on registration (default: true)
	AdminEmail       string // Optional: seed an admin with these credentials on an empty directory
	AdminPassword    string
	AdminName        string

	StrictLimit   httpx.RateLimitConfig // Per-IP limit on login and registration
	ModerateLimit httpx.RateLimitConfig // Per-user limit on authenticated routes
	TrustProxy    bool                  // Key IP limits on X-Forwarded-For/X-Real-IP (default: false)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:          getEnvOrDefault("AUTH_ISSUER", "accounts"),
		TokenSecret:     os.Getenv("AUTH_TOKEN_SECRET"),
		TokenSecretFile: os.Getenv("AUTH_TOKEN_SECRET_FILE"),
		TokenTTL:        getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultSessionTTL),

		Store:        getEnvOrDefault("AUTH_STORE", "memory"),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "accounts.db"),

		PasswordHasher: getEnvOrDefault("AUTH_PASSWORD_HASHER", "argon2id"),
		BcryptCost:     getEnvIntOrDefault("AUTH_BCRYPT_COST", 10),
		PepperFile:     os.Getenv("AUTH_PEPPER_FILE"),

		AllowAdminSignup: getEnvBoolOrDefault("AUTH_ALLOW_ADMIN_SIGNUP", true),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AdminName:        os.Getenv("ADMIN_NAME"),

		StrictLimit:   getEnvRateLimitOrDefault("STRICT", httpx.StrictLimit),
		ModerateLimit: getEnvRateLimitOrDefault("MODERATE", httpx.ModerateLimit),
		TrustProxy:    getEnvBoolOrDefault("RATELIMIT_TRUST_PROXY_HEADERS", false),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvRateLimitOrDefault reads RATELIMIT_<profile>_{REQUESTS,WINDOW_SEC,BURST}.
// RATELIMIT_<profile>_REQUESTS=0 disables the profile.
func getEnvRateLimitOrDefault(profile string, defaultValue httpx.RateLimitConfig) httpx.RateLimitConfig {
	prefix := "RATELIMIT_" + profile + "_"

	cfg := defaultValue
	cfg.RequestsPerWindow = getEnvIntOrDefault(prefix+"REQUESTS", defaultValue.RequestsPerWindow)
	if seconds := getEnvIntOrDefault(prefix+"WINDOW_SEC", 0); seconds > 0 {
		cfg.Window = time.Duration(seconds) * time.Second
	}
	cfg.Burst = getEnvIntOrDefault(prefix+"BURST", defaultValue.Burst)
	return cfg
}
