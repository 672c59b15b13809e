// Package config handles the XDG configuration directory, the config file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"taskdeck/internal/validate"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// ConfigFile is the optional config file base name (config.yaml).
	ConfigFile = "config"

	// DatabaseFile is the local key-value database filename.
	DatabaseFile = "taskdeck.db"

	// LogFile is the log filename used when --debug is not set.
	LogFile = "taskdeck.log"

	// EnvPrefix prefixes every environment override (TASKDECK_API_URL, ...).
	EnvPrefix = "TASKDECK"
)

// Defaults.
const (
	DefaultAPIURL   = "http://localhost:5000/api"
	DefaultTimeout  = 10 * time.Second
	DefaultLocale   = "en"
	DefaultLogLevel = "info"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"-"`

	// Debug enables debug logging to stderr.
	Debug bool `mapstructure:"-"`

	// Quiet suppresses informational output.
	Quiet bool `mapstructure:"-"`

	// APIURL is the base URL of the task API, e.g. http://localhost:5000/api.
	APIURL string `mapstructure:"api_url" validate:"required,url"`

	// VAPIDPublicKey is used when the server does not provide a push key.
	VAPIDPublicKey string `mapstructure:"vapid_public_key"`

	// PushEndpoint is the push relay base URL. Push is unsupported when empty.
	PushEndpoint string `mapstructure:"push_endpoint" validate:"omitempty,url"`

	// Locale selects the collation used when sorting by name.
	Locale string `mapstructure:"locale" validate:"required,bcp47_language_tag"`

	// Timeout bounds every API call.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdeck or $HOME/.config/taskdeck.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		APIURL:   DefaultAPIURL,
		Locale:   DefaultLocale,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
	}
}

// Load builds a Config from defaults, <dir>/config.yaml and TASKDECK_*
// environment variables, in increasing order of precedence.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	v := viper.New()
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("vapid_public_key", "")
	v.SetDefault("push_endpoint", "")
	v.SetDefault("locale", cfg.Locale)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetConfigName(ConfigFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.Dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DatabasePath returns the path to the local key-value database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Dir, DatabaseFile)
}

// LogPath returns the path to the log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
