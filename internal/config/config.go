// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ReaderConfig represents RFID reader configuration
type ReaderConfig struct {
	Address         int           `mapstructure:"address"`
	DefaultPosition int           `mapstructure:"default_position"`
	PollEnabled     bool          `mapstructure:"poll_enabled"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	ScanTimeout     time.Duration `mapstructure:"scan_timeout"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// MQTTConfig represents the optional MQTT publisher configuration.
// An empty Host disables publishing.
type MQTTConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         byte   `mapstructure:"qos"`
	CACert      string `mapstructure:"ca_cert"`
	ClientCert  string `mapstructure:"client_cert"`
	ClientKey   string `mapstructure:"client_key"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables.
// Extra search paths are tried before the defaults.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("../../internal/config")

	// Environment variable support
	v.SetEnvPrefix("RFID_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file; defaults and environment cover a missing one
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Reader defaults
	v.SetDefault("reader.address", 0xFF)
	v.SetDefault("reader.default_position", 1)
	v.SetDefault("reader.poll_enabled", false)
	v.SetDefault("reader.poll_interval", "1s")
	v.SetDefault("reader.scan_timeout", "5s")
	v.SetDefault("reader.connect_timeout", "10s")

	// MQTT defaults
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "rfid-service")
	v.SetDefault("mqtt.topic_prefix", "rfid")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.ca_cert", "")
	v.SetDefault("mqtt.client_cert", "")
	v.SetDefault("mqtt.client_key", "")

	// App defaults
	v.SetDefault("app.name", "rfid-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	// Basic validation
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if config.Reader.Address < 0 || config.Reader.Address > 0xFF {
		return fmt.Errorf("reader.address must fit in one byte, got %d", config.Reader.Address)
	}
	if config.Reader.PollEnabled && config.Reader.PollInterval <= 0 {
		return fmt.Errorf("reader.poll_interval must be positive when polling is enabled")
	}
	if config.Reader.ScanTimeout <= 0 {
		return fmt.Errorf("reader.scan_timeout must be positive")
	}
	if config.Reader.ConnectTimeout <= 0 {
		return fmt.Errorf("reader.connect_timeout must be positive")
	}

	if config.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if (config.MQTT.ClientCert == "") != (config.MQTT.ClientKey == "") {
		return fmt.Errorf("mqtt.client_cert and mqtt.client_key must be set together")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetMQTTBroker returns the broker URL, or "" when publishing is disabled
func (c *Config) GetMQTTBroker() string {
	if c.MQTT.Host == "" {
		return ""
	}
	scheme := "tcp"
	if c.MQTT.TLSEnabled() {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.Host, c.MQTT.Port)
}

// TLSEnabled reports whether any certificate material is configured
func (m MQTTConfig) TLSEnabled() bool {
	return m.CACert != "" || m.ClientCert != ""
}

// ReaderAddress returns the reader address byte
func (c *Config) ReaderAddress() byte {
	return byte(c.Reader.Address)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
