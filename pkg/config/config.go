package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// FeedOrders lists the Gamma sort keys the feed can be ordered by.
var FeedOrders = []string{"volume24hr", "createdAt", "endDate"}

// StorageModes lists the accepted STORAGE_MODE values.
var StorageModes = []string{"none", "console", "postgres"}

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Polymarket API
	PolymarketGammaURL string

	// Feed
	FeedLimit    int
	FeedOrder    string
	FeedTimeout  time.Duration
	FeedCacheTTL time.Duration

	// Selection
	SelectMaxResults      int
	SelectMinExpiryMargin time.Duration
	SelectMaxTitleLength  int

	// Deployment artifact
	FactoryAddress      string
	DeployEnvFile       string
	DeployRPCURLVar     string
	DeployPrivateKeyVar string
	DeployGasLimit      uint64
	DeployCallDelay     time.Duration
	OutputFormat        string

	// Storage
	StorageMode  string // "none", "console" or "postgres"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Polymarket API defaults
		PolymarketGammaURL: getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),

		// Feed defaults
		FeedLimit:    getIntOrDefault("FEED_LIMIT", 100),
		FeedOrder:    getEnvOrDefault("FEED_ORDER", "volume24hr"),
		FeedTimeout:  getDurationOrDefault("FEED_TIMEOUT", 10*time.Second),
		FeedCacheTTL: getDurationOrDefault("FEED_CACHE_TTL", time.Minute),

		// Selection defaults
		SelectMaxResults:      getIntOrDefault("SELECT_MAX_RESULTS", 10),
		SelectMinExpiryMargin: getDurationOrDefault("SELECT_MIN_EXPIRY_MARGIN", 24*time.Hour),
		SelectMaxTitleLength:  getIntOrDefault("SELECT_MAX_TITLE_LENGTH", 80),

		// Deployment defaults
		FactoryAddress:      os.Getenv("FACTORY_ADDRESS"),
		DeployEnvFile:       getEnvOrDefault("DEPLOY_ENV_FILE", ".env"),
		DeployRPCURLVar:     getEnvOrDefault("DEPLOY_RPC_URL_VAR", "MANTLE_SEPOLIA_RPC"),
		DeployPrivateKeyVar: getEnvOrDefault("DEPLOY_PRIVATE_KEY_VAR", "PRIVATE_KEY"),
		DeployGasLimit:      getUint64OrDefault("DEPLOY_GAS_LIMIT", 150000000),
		DeployCallDelay:     getDurationOrDefault("DEPLOY_CALL_DELAY", 5*time.Second),
		OutputFormat:        getEnvOrDefault("OUTPUT_FORMAT", "bash"),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "none"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "polymarket"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "polymarket123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_seeder"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
// FACTORY_ADDRESS may be empty here; commands that render require it.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.PolymarketGammaURL == "" {
		return fmt.Errorf("POLYMARKET_GAMMA_API_URL cannot be empty")
	}

	if c.FeedLimit <= 0 {
		return fmt.Errorf("FEED_LIMIT must be positive, got %d", c.FeedLimit)
	}

	if !slices.Contains(FeedOrders, c.FeedOrder) {
		return fmt.Errorf("FEED_ORDER must be one of %v, got %q", FeedOrders, c.FeedOrder)
	}

	if c.FeedTimeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive, got %s", c.FeedTimeout)
	}

	if c.FeedCacheTTL < 0 {
		return fmt.Errorf("FEED_CACHE_TTL cannot be negative, got %s", c.FeedCacheTTL)
	}

	if c.SelectMaxResults <= 0 {
		return fmt.Errorf("SELECT_MAX_RESULTS must be positive, got %d", c.SelectMaxResults)
	}

	if c.SelectMinExpiryMargin <= 0 {
		return fmt.Errorf("SELECT_MIN_EXPIRY_MARGIN must be positive, got %s", c.SelectMinExpiryMargin)
	}

	// Truncation keeps MaxTitleLength-3 characters plus "...".
	if c.SelectMaxTitleLength < 4 {
		return fmt.Errorf("SELECT_MAX_TITLE_LENGTH must be at least 4, got %d", c.SelectMaxTitleLength)
	}

	if c.FactoryAddress != "" && !common.IsHexAddress(c.FactoryAddress) {
		return fmt.Errorf("FACTORY_ADDRESS is not a hex address: %q", c.FactoryAddress)
	}

	if c.DeployRPCURLVar == "" {
		return fmt.Errorf("DEPLOY_RPC_URL_VAR cannot be empty")
	}

	if c.DeployPrivateKeyVar == "" {
		return fmt.Errorf("DEPLOY_PRIVATE_KEY_VAR cannot be empty")
	}

	if c.DeployCallDelay < 0 {
		return fmt.Errorf("DEPLOY_CALL_DELAY cannot be negative, got %s", c.DeployCallDelay)
	}

	if !slices.Contains(StorageModes, c.StorageMode) {
		return fmt.Errorf("STORAGE_MODE must be one of %v, got %q", StorageModes, c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getUint64OrDefault(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	uintVal, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return uintVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
