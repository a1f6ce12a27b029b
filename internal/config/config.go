package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// RemoteConfig holds the content store client settings.
type RemoteConfig struct {
	Kind      string        `mapstructure:"kind"` // http or memory
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	PageLimit int           `mapstructure:"page_limit"`
}

// PermissionConfig holds the permission file settings.
type PermissionConfig struct {
	FilePath     string `mapstructure:"file_path"`
	WatchEnabled bool   `mapstructure:"watch_enabled"`
}

// MiscConfig holds the remaining knobs.
type MiscConfig struct {
	GinMode         string        `mapstructure:"gin_mode"`
	LogLevel        string        `mapstructure:"log_level"`
	RefreshEnabled  bool          `mapstructure:"refresh_enabled"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	Permission PermissionConfig `mapstructure:"permission"`
	Misc       MiscConfig       `mapstructure:"misc"`
}

// LoadConfig reads config.yaml from ./config (when present), applies defaults
// and PLANBOARD_* environment overrides, and validates the result.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Defaults to allow running without config file
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.request_timeout", 5*time.Second)
	viper.SetDefault("server.cors_allowed_origins", "*")
	viper.SetDefault("remote.kind", "http")
	viper.SetDefault("remote.timeout", 10*time.Second)
	viper.SetDefault("remote.page_limit", 50)
	viper.SetDefault("permission.file_path", "./config/data/permissions.json")
	viper.SetDefault("permission.watch_enabled", true)
	viper.SetDefault("misc.gin_mode", "release")
	viper.SetDefault("misc.log_level", "info")
	viper.SetDefault("misc.refresh_enabled", false)
	viper.SetDefault("misc.refresh_interval", 5*time.Minute)

	// Environment variables like PLANBOARD_SERVER_PORT override everything
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLANBOARD")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutDownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Remote.Kind == "http" && c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required when remote.kind is http")
	}
	if c.Remote.PageLimit <= 0 {
		return fmt.Errorf("invalid remote page limit: %d", c.Remote.PageLimit)
	}
	if c.Permission.FilePath == "" {
		return errors.New("permission.file_path is required")
	}
	if c.Misc.RefreshEnabled && c.Misc.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive when refresh is enabled")
	}
	return nil
}
