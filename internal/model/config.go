package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig locates the local SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is a zap level name ("debug", "info", "warn", "error").
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `mapstructure:"format" yaml:"format"`

	// File receives log output. Empty means stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// ReportConfig controls derived statistics views.
type ReportConfig struct {
	TopTopics   int `mapstructure:"top_topics" yaml:"top_topics"`
	TopStudents int `mapstructure:"top_students" yaml:"top_students"`
}

// DashboardConfig controls the agenda side panel.
type DashboardConfig struct {
	UpcomingLimit int `mapstructure:"upcoming_limit" yaml:"upcoming_limit"`
}

// AppConfig is the top-level application configuration. Domain settings
// (prices, subjects, tax regime) live in the database, not here.
type AppConfig struct {
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Reports   ReportConfig    `mapstructure:"reports" yaml:"reports"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tutor-scheduler/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tutor-scheduler", "config.yaml")
}

// defaultDataDir returns ~/.local/share/tutor-scheduler.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "tutor-scheduler")
}

// defaultStateDir returns ~/.local/state/tutor-scheduler.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "tutor-scheduler")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: filepath.Join(defaultDataDir(), "tutor.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(defaultStateDir(), "tutor.log"),
		},
		Reports: ReportConfig{
			TopTopics:   10,
			TopStudents: 10,
		},
		Dashboard: DashboardConfig{
			UpcomingLimit: 5,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory and TUTOR_* environment variables
// override file values. If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tutor")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("reports.top_topics", defaults.Reports.TopTopics)
	v.SetDefault("reports.top_students", defaults.Reports.TopStudents)
	v.SetDefault("dashboard.upcoming_limit", defaults.Dashboard.UpcomingLimit)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reports.TopTopics <= 0 {
		cfg.Reports.TopTopics = defaults.Reports.TopTopics
	}
	if cfg.Reports.TopStudents <= 0 {
		cfg.Reports.TopStudents = defaults.Reports.TopStudents
	}
	if cfg.Dashboard.UpcomingLimit <= 0 {
		cfg.Dashboard.UpcomingLimit = defaults.Dashboard.UpcomingLimit
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log", cfg.Log)
	v.Set("reports", cfg.Reports)
	v.Set("dashboard", cfg.Dashboard)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
