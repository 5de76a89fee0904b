package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/pkg/external"
)

// EnvPrefix prefixes every environment override, e.g. OPENBGE_PLATFORM_HOST
const EnvPrefix = "OPENBGE"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

var _ domain.ConfigManager = (*Manager)(nil)

// Option configures a Manager
type Option func(*Manager)

// WithConfigFile reads the given file instead of searching the default paths
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.configFile = path
	}
}

// WithViper binds the manager to an existing viper instance, e.g. one that
// has command line flags bound to it
func WithViper(v *viper.Viper) Option {
	return func(m *Manager) {
		m.v = v
	}
}

// NewManager creates a new configuration manager
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.v == nil {
		m.v = viper.New()
	}

	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := m.v

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/openbge/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values. Keys without a default are
// registered too so that AutomaticEnv can populate them on Unmarshal.
func setDefaults(v *viper.Viper) {
	// Platform defaults
	v.SetDefault("platform.host", "")
	v.SetDefault("platform.key", "")
	v.SetDefault("platform.secret", "")
	v.SetDefault("platform.timeout", external.DefaultTimeout.String())
	v.SetDefault("platform.error_code_prefix", "")
	v.SetDefault("platform.inflection", "camelize")
	v.SetDefault("platform.rate_limit", 0)
	v.SetDefault("platform.sign_business_params", false)
	v.SetDefault("platform.user_agent", "openbge-client/1.0")
	v.SetDefault("platform.circuit_breaker.enabled", false)
	v.SetDefault("platform.circuit_breaker.max_requests", 3)
	v.SetDefault("platform.circuit_breaker.interval", "30s")
	v.SetDefault("platform.circuit_breaker.timeout", "60s")
	v.SetDefault("platform.circuit_breaker.failure_threshold", 5)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// MCP defaults
	v.SetDefault("mcp.server_name", "openbge-client")
	v.SetDefault("mcp.server_version", "1.0.0")
	v.SetDefault("mcp.transport_type", "stdio")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetPlatformConfig returns the platform connection configuration
func (m *Manager) GetPlatformConfig() *domain.PlatformConfig {
	return &m.config.Platform
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

var validInflections = map[string]bool{
	"camelize": true, "underscore": true, "none": true,
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if err := ValidatePlatform(config.Platform); err != nil {
		return err
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return &domain.ConfigError{Key: "server.port", Reason: fmt.Sprintf("invalid port %d", config.Server.Port)}
	}

	if _, err := logrus.ParseLevel(config.Logging.Level); err != nil {
		return &domain.ConfigError{Key: "logging.level", Reason: fmt.Sprintf("invalid log level %q", config.Logging.Level)}
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return &domain.ConfigError{Key: "logging.format", Reason: fmt.Sprintf("unsupported format %q", config.Logging.Format)}
	}

	if config.MCP.TransportType != "stdio" {
		return &domain.ConfigError{Key: "mcp.transport_type", Reason: fmt.Sprintf("unsupported transport %q", config.MCP.TransportType)}
	}

	return nil
}

// ValidatePlatform checks the settings required to talk to the platform
func ValidatePlatform(p domain.PlatformConfig) error {
	if !external.HostPattern.MatchString(p.Host) {
		return &domain.ConfigError{Key: "platform.host", Reason: fmt.Sprintf("%q is not a valid host", p.Host)}
	}
	if p.Key == "" {
		return &domain.ConfigError{Key: "platform.key", Reason: "is required"}
	}
	if p.Secret == "" {
		return &domain.ConfigError{Key: "platform.secret", Reason: "is required"}
	}
	if p.Timeout < 0 {
		return &domain.ConfigError{Key: "platform.timeout", Reason: "must not be negative"}
	}
	if p.RateLimit < 0 {
		return &domain.ConfigError{Key: "platform.rate_limit", Reason: "must not be negative"}
	}
	if p.Inflection != "" && !validInflections[strings.ToLower(p.Inflection)] {
		return &domain.ConfigError{Key: "platform.inflection", Reason: fmt.Sprintf("unsupported inflection %q", p.Inflection)}
	}
	return nil
}
