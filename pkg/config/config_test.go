package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:              "8080",
		PolymarketGammaURL:    "https://gamma-api.polymarket.com",
		FeedLimit:             100,
		FeedOrder:             "volume24hr",
		FeedTimeout:           10 * time.Second,
		FeedCacheTTL:          time.Minute,
		SelectMaxResults:      10,
		SelectMinExpiryMargin: 24 * time.Hour,
		SelectMaxTitleLength:  80,
		DeployRPCURLVar:       "MANTLE_SEPOLIA_RPC",
		DeployPrivateKeyVar:   "PRIVATE_KEY",
		DeployCallDelay:       5 * time.Second,
		StorageMode:           "none",
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"HTTPPort", cfg.HTTPPort, "8080"},
		{"PolymarketGammaURL", cfg.PolymarketGammaURL, "https://gamma-api.polymarket.com"},
		{"FeedLimit", cfg.FeedLimit, 100},
		{"FeedOrder", cfg.FeedOrder, "volume24hr"},
		{"FeedTimeout", cfg.FeedTimeout, 10 * time.Second},
		{"FeedCacheTTL", cfg.FeedCacheTTL, time.Minute},
		{"SelectMaxResults", cfg.SelectMaxResults, 10},
		{"SelectMinExpiryMargin", cfg.SelectMinExpiryMargin, 24 * time.Hour},
		{"SelectMaxTitleLength", cfg.SelectMaxTitleLength, 80},
		{"DeployEnvFile", cfg.DeployEnvFile, ".env"},
		{"DeployRPCURLVar", cfg.DeployRPCURLVar, "MANTLE_SEPOLIA_RPC"},
		{"DeployPrivateKeyVar", cfg.DeployPrivateKeyVar, "PRIVATE_KEY"},
		{"DeployGasLimit", cfg.DeployGasLimit, uint64(150000000)},
		{"DeployCallDelay", cfg.DeployCallDelay, 5 * time.Second},
		{"OutputFormat", cfg.OutputFormat, "bash"},
		{"StorageMode", cfg.StorageMode, "none"},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("FEED_LIMIT", "250")
	t.Setenv("FEED_ORDER", "endDate")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("SELECT_MAX_RESULTS", "5")
	t.Setenv("FACTORY_ADDRESS", "0x49b30fa07a0437491584828b3d77e7891cdecb5d")
	t.Setenv("DEPLOY_GAS_LIMIT", "2000000")
	t.Setenv("STORAGE_MODE", "console")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.FeedLimit != 250 {
		t.Errorf("expected FeedLimit 250, got %d", cfg.FeedLimit)
	}
	if cfg.FeedOrder != "endDate" {
		t.Errorf("expected FeedOrder endDate, got %q", cfg.FeedOrder)
	}
	if cfg.FeedTimeout != 3*time.Second {
		t.Errorf("expected FeedTimeout 3s, got %v", cfg.FeedTimeout)
	}
	if cfg.SelectMaxResults != 5 {
		t.Errorf("expected SelectMaxResults 5, got %d", cfg.SelectMaxResults)
	}
	if cfg.FactoryAddress != "0x49b30fa07a0437491584828b3d77e7891cdecb5d" {
		t.Errorf("unexpected FactoryAddress %q", cfg.FactoryAddress)
	}
	if cfg.DeployGasLimit != 2000000 {
		t.Errorf("expected DeployGasLimit 2000000, got %d", cfg.DeployGasLimit)
	}
	if cfg.StorageMode != "console" {
		t.Errorf("expected StorageMode console, got %q", cfg.StorageMode)
	}
}

func TestLoadFromEnv_InvalidValueRejected(t *testing.T) {
	t.Setenv("STORAGE_MODE", "sqlite")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "validate config: STORAGE_MODE") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "valid-with-factory", mutate: func(c *Config) { c.FactoryAddress = "0x49B30Fa07a0437491584828B3D77E7891CDecb5d" }},
		{name: "zero-cache-ttl", mutate: func(c *Config) { c.FeedCacheTTL = 0 }},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: "HTTP_PORT cannot be empty"},
		{name: "empty-gamma-url", mutate: func(c *Config) { c.PolymarketGammaURL = "" }, wantErr: "POLYMARKET_GAMMA_API_URL cannot be empty"},
		{name: "zero-feed-limit", mutate: func(c *Config) { c.FeedLimit = 0 }, wantErr: "FEED_LIMIT must be positive, got 0"},
		{name: "unknown-feed-order", mutate: func(c *Config) { c.FeedOrder = "liquidity" }, wantErr: "FEED_ORDER must be one of"},
		{name: "zero-feed-timeout", mutate: func(c *Config) { c.FeedTimeout = 0 }, wantErr: "FEED_TIMEOUT must be positive"},
		{name: "negative-cache-ttl", mutate: func(c *Config) { c.FeedCacheTTL = -time.Second }, wantErr: "FEED_CACHE_TTL cannot be negative"},
		{name: "zero-max-results", mutate: func(c *Config) { c.SelectMaxResults = 0 }, wantErr: "SELECT_MAX_RESULTS must be positive, got 0"},
		{name: "negative-margin", mutate: func(c *Config) { c.SelectMinExpiryMargin = -time.Hour }, wantErr: "SELECT_MIN_EXPIRY_MARGIN must be positive"},
		{name: "zero-margin", mutate: func(c *Config) { c.SelectMinExpiryMargin = 0 }, wantErr: "SELECT_MIN_EXPIRY_MARGIN must be positive"},
		{name: "short-title-length", mutate: func(c *Config) { c.SelectMaxTitleLength = 3 }, wantErr: "SELECT_MAX_TITLE_LENGTH must be at least 4, got 3"},
		{name: "bad-factory", mutate: func(c *Config) { c.FactoryAddress = "0x1234" }, wantErr: "FACTORY_ADDRESS is not a hex address"},
		{name: "empty-rpc-var", mutate: func(c *Config) { c.DeployRPCURLVar = "" }, wantErr: "DEPLOY_RPC_URL_VAR cannot be empty"},
		{name: "empty-key-var", mutate: func(c *Config) { c.DeployPrivateKeyVar = "" }, wantErr: "DEPLOY_PRIVATE_KEY_VAR cannot be empty"},
		{name: "negative-delay", mutate: func(c *Config) { c.DeployCallDelay = -time.Second }, wantErr: "DEPLOY_CALL_DELAY cannot be negative"},
		{name: "unknown-storage", mutate: func(c *Config) { c.StorageMode = "redis" }, wantErr: "STORAGE_MODE must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestGetIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{name: "parse-100", envValue: "100", want: 100},
		{name: "parse-negative", envValue: "-10", want: -10},
		{name: "empty-string", envValue: "", want: 42},
		{name: "non-numeric", envValue: "abc", want: 42},
		{name: "float", envValue: "3.14", want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VAR", tt.envValue)

			got := getIntOrDefault("TEST_INT_VAR", 42)
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestGetUint64OrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     uint64
	}{
		{name: "parse-large", envValue: "150000000", want: 150000000},
		{name: "negative", envValue: "-1", want: 7},
		{name: "non-numeric", envValue: "lots", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_UINT_VAR", tt.envValue)

			got := getUint64OrDefault("TEST_UINT_VAR", 7)
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestGetDurationOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{name: "seconds", envValue: "30s", want: 30 * time.Second},
		{name: "hours", envValue: "48h", want: 48 * time.Hour},
		{name: "bare-number", envValue: "30", want: time.Minute},
		{name: "garbage", envValue: "soon", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_VAR", tt.envValue)

			got := getDurationOrDefault("TEST_DURATION_VAR", time.Minute)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		logger, err := NewLogger(level)
		if err != nil {
			t.Errorf("level %q: expected no error, got %v", level, err)
			continue
		}
		if logger == nil {
			t.Errorf("level %q: expected logger", level)
		}
	}

	_, err := NewLogger("verbose")
	if err == nil {
		t.Error("expected error for invalid level")
	}
}
