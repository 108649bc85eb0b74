// Package config handles tally configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tOgg1/tally/internal/unread"
)

// Config is the root configuration structure for tally.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Notification badge settings
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`

	// Mute handling
	Muting MutingConfig `yaml:"muting" mapstructure:"muting"`

	// Session defaults
	Session SessionConfig `yaml:"session" mapstructure:"session"`
}

// GlobalConfig contains global tally settings.
type GlobalConfig struct {
	// DataDir is where tally stores its data (default: ~/.local/share/tally).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/tally).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// NotificationsConfig controls the desktop badge count.
type NotificationsConfig struct {
	// DesktopIconCountDisplay is notifiable, none or all.
	DesktopIconCountDisplay string `yaml:"desktop_icon_count_display" mapstructure:"desktop_icon_count_display"`
}

// MutingConfig controls mute update handling.
type MutingConfig struct {
	// EchoWindow is how long after a local mute change server echoes of
	// it are ignored.
	EchoWindow time.Duration `yaml:"echo_window" mapstructure:"echo_window"`
}

// SessionConfig contains session defaults.
type SessionConfig struct {
	// CurrentUserID overrides the user_id of loaded state files when set.
	CurrentUserID int64 `yaml:"current_user_id" mapstructure:"current_user_id"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "tally"),
			ConfigDir: filepath.Join(homeDir, ".config", "tally"),
		},
		Database: DatabaseConfig{
			Path:          "", // Will be set to DataDir/tally.db
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Notifications: NotificationsConfig{
			DesktopIconCountDisplay: string(unread.PolicyNotifiable),
		},
		Muting: MutingConfig{
			EchoWindow: time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}

	if _, err := unread.ParseNotifiablePolicy(c.Notifications.DesktopIconCountDisplay); err != nil {
		return fmt.Errorf("notifications.desktop_icon_count_display: %w", err)
	}

	if c.Muting.EchoWindow < 0 {
		return fmt.Errorf("muting.echo_window must not be negative")
	}

	if c.Session.CurrentUserID < 0 {
		return fmt.Errorf("session.current_user_id must not be negative")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	return nil
}

// NotifiablePolicy returns the validated badge policy.
func (c *Config) NotifiablePolicy() unread.NotifiablePolicy {
	policy, err := unread.ParseNotifiablePolicy(c.Notifications.DesktopIconCountDisplay)
	if err != nil {
		return unread.PolicyNotifiable
	}
	return policy
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "tally.db")
}
