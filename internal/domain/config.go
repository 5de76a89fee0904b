package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// PlatformConfig represents the OpenBGE platform connection
type PlatformConfig struct {
	Host    string        `mapstructure:"host"`
	Key     string        `mapstructure:"key"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Accepted for compatibility; neither changes the returned codes or key naming.
	ErrorCodePrefix string `mapstructure:"error_code_prefix"`
	Inflection      string `mapstructure:"inflection"`

	RateLimit          float64              `mapstructure:"rate_limit"` // requests per second, 0 disables
	SignBusinessParams bool                 `mapstructure:"sign_business_params"`
	UserAgent          string               `mapstructure:"user_agent"`
	CircuitBreaker     CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
	TransportType string `mapstructure:"transport_type"` // "stdio" only
}
