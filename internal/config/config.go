// Package config loads the application configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Gist     GistConfig     `mapstructure:"gist"`
	ICal     ICalConfig     `mapstructure:"ical"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	State    StateConfig    `mapstructure:"state"`
}

// CalendarConfig represents the holiday calendar configuration
type CalendarConfig struct {
	Country           string `mapstructure:"country"`
	Subdivision       string `mapstructure:"subdivision"`
	WorkDaysPerYear   int    `mapstructure:"work_days_per_year"`
	CarryoverHolidays int    `mapstructure:"carryover_holidays"`
}

// GistConfig represents the remote gist store configuration
type GistConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	Token       string `mapstructure:"token"`
	GistID      string `mapstructure:"gist_id"`
}

// ICalConfig represents the external events feed configuration
type ICalConfig struct {
	URL string `mapstructure:"url"`
}

// SyncConfig represents save scheduling configuration
type SyncConfig struct {
	DebounceInterval string `mapstructure:"debounce_interval"`
	MaxRetries       int    `mapstructure:"max_retries"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	Schedule   string `mapstructure:"schedule"` // cron expression for periodic sync
	LogFile    string `mapstructure:"log_file"`
	LogLevel   string `mapstructure:"log_level"`
	SystemTray bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

// StateConfig represents local state storage configuration
type StateConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.timeoff-tracker")
		v.AddConfigPath("/etc/timeoff-tracker")
	}

	// Read environment variables
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.country", "US")
	v.SetDefault("calendar.work_days_per_year", 216)
	v.SetDefault("gist.api_endpoint", "https://api.github.com")
	v.SetDefault("sync.max_retries", 3)
	v.SetDefault("daemon.schedule", "0 */2 * * *")
	v.SetDefault("daemon.log_level", "info")
	v.SetDefault("state.database_path", "timeoff-tracker.db")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Calendar.Country == "" {
		return fmt.Errorf("calendar.country is required")
	}
	if c.Calendar.WorkDaysPerYear <= 0 {
		return fmt.Errorf("calendar.work_days_per_year must be positive")
	}
	if c.Calendar.CarryoverHolidays < 0 {
		return fmt.Errorf("calendar.carryover_holidays must not be negative")
	}

	if c.Gist.APIEndpoint == "" {
		return fmt.Errorf("gist.api_endpoint is required")
	}
	if c.Gist.GistID != "" && c.Gist.Token == "" {
		return fmt.Errorf("gist.token is required when gist.gist_id is set")
	}

	if c.Sync.MaxRetries <= 0 {
		return fmt.Errorf("sync.max_retries must be positive")
	}

	if c.State.DatabasePath == "" {
		return fmt.Errorf("state.database_path is required")
	}

	return nil
}

// GetDebounceInterval returns the save debounce duration
func (c *SyncConfig) GetDebounceInterval() time.Duration {
	if c.DebounceInterval == "" {
		return 2 * time.Second
	}
	duration, err := time.ParseDuration(c.DebounceInterval)
	if err != nil {
		return 2 * time.Second
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Gist.Token = os.ExpandEnv(c.Gist.Token)
	c.Gist.GistID = os.ExpandEnv(c.Gist.GistID)
	c.ICal.URL = os.ExpandEnv(c.ICal.URL)
}
