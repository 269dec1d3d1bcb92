package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

const (
	MFAStoreSQLite = "sqlite"
	MFAStoreRedis  = "redis"
)

type Config struct {
	Issuer           string        // Issuer claim for tokens (default: auth-service)
	Algorithm        string        // JWT signing algorithm, EdDSA or ES256 (default: EdDSA)
	NumKeys          int           // Number of signing keys to generate (default: 2, min: 1, max: 10)
	TokenTTL         time.Duration // Access token lifetime (default: 1h)
	AllowOwnerSignup bool          // Whether POST /v1/accounts accepts role=owner (default: true)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)

	MFACodeTTL     time.Duration // Lifetime of a one-time code (default: 5m)
	MFAMaxAttempts int           // Wrong codes allowed per challenge (default: 5)
	MFAEchoCode    bool          // Return the code in the login response (default: true in dev and test)
	MFAStore       string        // Challenge backend, sqlite or redis (default: sqlite)

	RedisAddr     string // Redis address for MFA_STORE=redis (default: localhost:6379)
	RedisPassword string
	RedisDB       int

	Env                  string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired challenge sweep interval (default: 10m)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Issuer:           getEnvOrDefault("AUTH_ISSUER", "auth-service"),
		Algorithm:        getEnvOrDefault("AUTH_ALGORITHM", jwtx.AlgorithmEdDSA),
		NumKeys:          getEnvIntOrDefault("AUTH_NUM_KEYS", 2),
		TokenTTL:         getEnvDurationOrDefault("AUTH_TOKEN_TTL", time.Hour),
		AllowOwnerSignup: getEnvBoolOrDefault("AUTH_ALLOW_OWNER_SIGNUP", true),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		MFACodeTTL:     getEnvDurationOrDefault("MFA_CODE_TTL", service.DefaultMFACodeTTL),
		MFAMaxAttempts: getEnvIntOrDefault("MFA_MAX_ATTEMPTS", service.DefaultMFAMaxAttempts),
		MFAEchoCode:    getEnvBoolOrDefault("MFA_ECHO_CODE", env == "dev" || env == "test"),
		MFAStore:       strings.ToLower(getEnvOrDefault("MFA_STORE", MFAStoreSQLite)),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Algorithm {
	case jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256:
	default:
		return fmt.Errorf("AUTH_ALGORITHM must be %s or %s, got %q", jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256, c.Algorithm)
	}
	switch c.MFAStore {
	case MFAStoreSQLite, MFAStoreRedis:
	default:
		return fmt.Errorf("MFA_STORE must be %s or %s, got %q", MFAStoreSQLite, MFAStoreRedis, c.MFAStore)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.MFACodeTTL <= 0 {
		return fmt.Errorf("MFA_CODE_TTL must be positive, got %s", c.MFACodeTTL)
	}
	if c.MFAMaxAttempts < 1 {
		return fmt.Errorf("MFA_MAX_ATTEMPTS must be at least 1, got %d", c.MFAMaxAttempts)
	}
	if c.MFAEchoCode && c.Env == "prod" {
		return fmt.Errorf("MFA_ECHO_CODE cannot be enabled when ENV=prod")
	}
	return nil
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

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
