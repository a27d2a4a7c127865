package config

import (
	"fmt"
	"os"
	"strings"

	"market-buzz/src/models"
	"market-buzz/src/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, usually provided through a .env file.
const (
	EnvConfigPath   = "MARKET_BUZZ_CONFIG"
	EnvDBConnection = "MARKET_BUZZ_DB_CONNECTION"
	EnvRedisAddr    = "MARKET_BUZZ_REDIS_ADDR"
	EnvUserAgent    = "MARKET_BUZZ_USER_AGENT"
	EnvLogLevel     = "MARKET_BUZZ_LOG_LEVEL"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// LoadDotEnv loads the given .env files into the process environment. Missing
// files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes, applying defaults and
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Significance == "" {
		c.Significance = models.SignificanceHeuristic
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.CacheTTLMinutes == 0 {
		c.Storage.CacheTTLMinutes = 60
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 15
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Market.DefaultRangeDays == 0 {
		c.Market.DefaultRangeDays = 30
	}
	if c.Social.BaseURL == "" {
		c.Social.BaseURL = "https://www.reddit.com"
	}
	if c.Social.PostLimit == 0 {
		c.Social.PostLimit = 500
	}
	if c.Refresh.RangeDays == 0 {
		c.Refresh.RangeDays = c.Market.DefaultRangeDays
	}
	if c.Refresh.HistorySize == 0 {
		c.Refresh.HistorySize = 48
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBConnection); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Network.UserAgent = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	switch c.Significance {
	case models.SignificanceHeuristic, models.SignificanceExact:
	default:
		return fmt.Errorf("unknown significance estimator %q", c.Significance)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for redis")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}
	if c.Storage.CacheTTLMinutes < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Sources
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("at least one market symbol must be configured")
	}
	for i, sym := range c.Market.Symbols {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("market symbol %d cannot be empty", i)
		}
	}
	if len(c.Social.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit must be configured")
	}
	for i, sub := range c.Social.Subreddits {
		if strings.TrimSpace(sub) == "" {
			return fmt.Errorf("subreddit %d cannot be empty", i)
		}
	}
	if c.Market.DefaultRangeDays <= 0 || c.Market.DefaultRangeDays > utils.MaxRangeDays {
		return fmt.Errorf("default range must be between 1 and %d days", utils.MaxRangeDays)
	}
	if c.Social.PostLimit <= 0 {
		return fmt.Errorf("post limit must be greater than 0")
	}

	// Refresh loop
	if c.Refresh.Enabled && c.Refresh.IntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}
	if c.Refresh.RangeDays <= 0 || c.Refresh.RangeDays > utils.MaxRangeDays {
		return fmt.Errorf("refresh range must be between 1 and %d days", utils.MaxRangeDays)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Pairs returns every configured (symbol, subreddit) combination.
func (c *Config) Pairs() []models.MCorrelationRequest {
	var pairs []models.MCorrelationRequest
	for _, sym := range c.Market.Symbols {
		for _, sub := range c.Social.Subreddits {
			pairs = append(pairs, models.MCorrelationRequest{
				Symbol:    sym,
				Subreddit: sub,
				RangeDays: c.Refresh.RangeDays,
			})
		}
	}
	return pairs
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
