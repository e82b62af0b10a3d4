package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL       = "https://backend-ledger-af1t.onrender.com/api"
	DefaultToastDuration = 4000 * time.Millisecond
)

type Config struct {
	Client  ClientConfig
	Logging LoggingConfig
	Sandbox SandboxConfig
}

type ClientConfig struct {
	BaseURL       string
	ToastDuration time.Duration
	Metrics       bool
}

type LoggingConfig struct {
	Level  string
	Format string // text|json
}

type SandboxConfig struct {
	Host               string
	Port               string
	Environment        string
	DBDriver           string // sqlite|postgres
	DBDSN              string
	AutoMigrate        bool
	SeedDemoData       bool
	RateLimitPerSecond int
	RateLimitBurst     int
	BCryptCost         int
	AllowedOrigins     []string
	JWT                JWTConfig
}

type JWTConfig struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration
	CookieName string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	config := &Config{
		Client: ClientConfig{
			BaseURL:       strings.TrimRight(getEnv("LEDGER_API_BASE_URL", DefaultBaseURL), "/"),
			ToastDuration: getDurationEnv("LEDGER_TOAST_DURATION", DefaultToastDuration),
			Metrics:       getBoolEnv("LEDGER_CLIENT_METRICS", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Sandbox: SandboxConfig{
			Host:               getEnv("SANDBOX_HOST", "localhost"),
			Port:               getEnv("SANDBOX_PORT", "8080"),
			Environment:        getEnv("APP_ENV", "development"),
			DBDriver:           getEnv("SANDBOX_DB_DRIVER", "sqlite"),
			DBDSN:              getEnv("SANDBOX_DB_DSN", "file:ledgervault.db?_foreign_keys=on"),
			AutoMigrate:        getBoolEnv("AUTO_MIGRATE", true),
			SeedDemoData:       getBoolEnv("SEED_DEMO_DATA", true),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 40),
			BCryptCost:         getIntEnv("BCRYPT_COST", 10),
			AllowedOrigins:     getListEnv("SANDBOX_ALLOWED_ORIGINS"),
			JWT: JWTConfig{
				Secret:     []byte(getEnv("JWT_SECRET", "")),
				Issuer:     getEnv("JWT_ISSUER", "ledgervault-sandbox"),
				TTL:        getDurationEnv("JWT_TTL", 24*time.Hour),
				CookieName: getEnv("SESSION_COOKIE_NAME", "token"),
			},
		},
	}

	if len(config.Sandbox.JWT.Secret) == 0 {
		if config.IsProduction() {
			log.Fatal("JWT_SECRET must be set in production environments")
		}
		log.Println("Development environment: using an ephemeral JWT secret (set JWT_SECRET to keep sessions across restarts)")
		config.Sandbox.JWT.Secret = []byte("ledgervault-dev-secret")
	}

	return config
}

// Address returns the host:port the sandbox listens on.
func (c *SandboxConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *Config) IsDevelopment() bool {
	return c.Sandbox.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Sandbox.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty entries.
func getListEnv(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
