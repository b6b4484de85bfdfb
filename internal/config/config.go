// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for launched browser instances.
type BrowserConfig struct {
	// ExecPath points at a local Chrome/Chromium binary. Empty means
	// chromedp's default lookup.
	ExecPath        string   `mapstructure:"exec_path" yaml:"exec_path"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string `mapstructure:"args" yaml:"args"`
}

// SessionConfig tunes the login wait loop and the validation pass.
type SessionConfig struct {
	// LoginTimeout bounds how long a human has to complete a login.
	LoginTimeout time.Duration `mapstructure:"login_timeout" yaml:"login_timeout"`
	// PollInterval is the delay between login-completion checks.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// NavigationTimeout bounds a single page load during validation.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SettleWait gives client-side redirects time to land after a load.
	SettleWait time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	// CheckConcurrency caps parallel validations in bulk checks.
	CheckConcurrency int `mapstructure:"check_concurrency" yaml:"check_concurrency"`
	// CheckRatePerSec paces validation launches across a bulk check.
	CheckRatePerSec float64 `mapstructure:"check_rate_per_sec" yaml:"check_rate_per_sec"`
}

// StorageConfig locates on-disk state.
type StorageConfig struct {
	// DataDir is the root for the database and session blobs.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	// CookieDir overrides the session-blob directory. Empty means
	// <data_dir>/cookiesFile.
	CookieDir string `mapstructure:"cookie_dir" yaml:"cookie_dir"`
}

// DatabaseConfig holds the database location.
type DatabaseConfig struct {
	// Path overrides the SQLite file location. Empty means
	// <data_dir>/database.db.
	Path string `mapstructure:"path" yaml:"path"`
}

// SessionDir resolves the directory holding session blobs.
func (c *Config) SessionDir() string {
	if c.Storage.CookieDir != "" {
		return c.Storage.CookieDir
	}
	return filepath.Join(c.Storage.DataDir, "cookiesFile")
}

// DatabasePath resolves the SQLite file location.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Storage.DataDir, "database.db")
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "socialup")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.ignore_tls_errors", true)
	v.SetDefault("browser.args", []string{})

	v.SetDefault("session.login_timeout", "5m")
	v.SetDefault("session.poll_interval", "5s")
	v.SetDefault("session.navigation_timeout", "60s")
	v.SetDefault("session.settle_wait", "2s")
	v.SetDefault("session.check_concurrency", 2)
	v.SetDefault("session.check_rate_per_sec", 0.5)

	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.cookie_dir", "")
	v.SetDefault("database.path", "")
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("session.poll_interval must be positive, got %s", c.Session.PollInterval)
	}
	if c.Session.LoginTimeout < c.Session.PollInterval {
		return fmt.Errorf("session.login_timeout (%s) must be at least one poll interval (%s)",
			c.Session.LoginTimeout, c.Session.PollInterval)
	}
	if c.Session.CheckConcurrency < 1 {
		return fmt.Errorf("session.check_concurrency must be at least 1, got %d", c.Session.CheckConcurrency)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	return nil
}

// Load unmarshals the global viper state into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
