package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds watch-tracking API configuration
type BackendConfig struct {
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Retries           int           `mapstructure:"retries"`             // Extra attempts for reads
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // Outgoing rate limit
}

// SearchConfig holds search-to-add configuration
type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	NotificationTTL time.Duration `mapstructure:"notification_ttl"`
	DefaultSort     string        `mapstructure:"default_sort"` // date_added, title, year, rating
}

// CacheConfig holds local persistence configuration
type CacheConfig struct {
	Path string `mapstructure:"path"` // Empty disables persistence
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://localhost:8080",
			Timeout:           15 * time.Second,
			Retries:           3,
			RequestsPerSecond: 10,
		},
		Search: SearchConfig{
			Debounce: 300 * time.Millisecond,
		},
		UI: UIConfig{
			NotificationTTL: 4 * time.Second,
			DefaultSort:     "date_added",
		},
		Cache: CacheConfig{
			Path: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "watchlog", "watchlog.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "watchlog", "watchlog.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "watchlog")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "watchlog")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "watchlog", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "watchlog", "cache")
	}
}

// newViper returns a viper instance seeded with defaults and env bindings.
// Defaults must be registered key by key for WATCHLOG_* overrides to reach
// Unmarshal.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("WATCHLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAll(v, cfg)
	return v
}

func setAll(v *viper.Viper, cfg *Config) {
	set := v.SetDefault
	set("backend.url", cfg.Backend.URL)
	set("backend.timeout", cfg.Backend.Timeout)
	set("backend.retries", cfg.Backend.Retries)
	set("backend.requests_per_second", cfg.Backend.RequestsPerSecond)
	set("search.debounce", cfg.Search.Debounce)
	set("ui.notification_ttl", cfg.UI.NotificationTTL)
	set("ui.default_sort", cfg.UI.DefaultSort)
	set("cache.path", cfg.Cache.Path)
	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
	set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	set("logging.max_backups", cfg.Logging.MaxBackups)
}

// LoadConfig loads configuration from file and environment. When dirs is
// empty the OS config directory and the working directory are searched.
func LoadConfig(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if len(dirs) == 0 {
		dirs = []string{defaultConfigPath(), "."}
	}
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot start with
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend.url must be an http(s) URL, got %q", c.Backend.URL)
	}
	if c.Backend.Retries < 0 {
		return fmt.Errorf("backend.retries must not be negative, got %d", c.Backend.Retries)
	}
	if c.Search.Debounce < 0 || c.UI.NotificationTTL < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// SaveConfig writes cfg to config.yaml in the OS config directory and
// returns the written path
func SaveConfig(cfg *Config) (string, error) {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	set := v.Set
	set("backend.url", cfg.Backend.URL)
	set("backend.timeout", cfg.Backend.Timeout.String())
	set("backend.retries", cfg.Backend.Retries)
	set("backend.requests_per_second", cfg.Backend.RequestsPerSecond)
	set("search.debounce", cfg.Search.Debounce.String())
	set("ui.notification_ttl", cfg.UI.NotificationTTL.String())
	set("ui.default_sort", cfg.UI.DefaultSort)
	set("cache.path", cfg.Cache.Path)
	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
	set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configFile, nil
}
