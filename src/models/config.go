package models

// Significance estimators
const (
	SignificanceHeuristic = "heuristic"
	SignificanceExact     = "exact"
)

// MConfig Structure
type MConfig struct {
	Name         string         `yaml:"name"`
	Host         string         `yaml:"host"`
	Port         int            `yaml:"port"`
	LogLevel     string         `yaml:"log_level"`
	GrpcHost     string         `yaml:"grpc_host"`
	GrpcPort     int            `yaml:"grpc_port"`
	Significance string         `yaml:"significance"` // "heuristic" (default) or "exact"
	Storage      MStorageConfig `yaml:"storage"`
	Network      MNetworkConfig `yaml:"network"`
	Market       MMarketConfig  `yaml:"market"`
	Social       MSocialConfig  `yaml:"social"`
	Refresh      MRefreshConfig `yaml:"refresh"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // sqlite, postgres, redis
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RedisAddr          string `yaml:"redis_addr"`
	RedisDB            int    `yaml:"redis_db"`
	CacheTTLMinutes    int    `yaml:"cache_ttl_minutes"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"` // Optional, random when empty
}

type MMarketConfig struct {
	BaseURL          string   `yaml:"base_url"`
	Symbols          []string `yaml:"symbols"`
	DefaultRangeDays int      `yaml:"default_range_days"`
}

type MSocialConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Subreddits []string `yaml:"subreddits"`
	PostLimit  int      `yaml:"post_limit"`
}

type MRefreshConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
	RangeDays       int  `yaml:"range_days"`
	HistorySize     int  `yaml:"history_size"` // Snapshots kept per pair
}

// -----------------------------------------------------------------------------

// LogLevelName exposes the configured level to the logger package.
func (c *MConfig) LogLevelName() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}

// -----------------------------------------------------------------------------

// AppName tags log entries with the configured application name.
func (c *MConfig) AppName() string {
	if c == nil {
		return ""
	}
	return c.Name
}
