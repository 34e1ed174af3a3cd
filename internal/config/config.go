package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	ProvidersFile      string `yaml:"providers_file"`
	ProvidersURL       string `yaml:"providers_url"`
	FetchLatest        bool   `yaml:"fetch_latest"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	UserAgent          string `yaml:"user_agent"`
	MaxWidth           int    `yaml:"max_width"`
	MaxHeight          int    `yaml:"max_height"`
	Verbose            bool   `yaml:"verbose"`
	Output             string `yaml:"output"`
	Port               int    `yaml:"port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int    `yaml:"rate_limit_burst"`
	MaxBatchURLs       int    `yaml:"max_batch_urls"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds:     10,
		UserAgent:          "oembed/1.0",
		Output:             "text",
		Port:               8080,
		RateLimitPerMinute: 60,
		RateLimitBurst:     10,
		MaxBatchURLs:       50,
	}
}

// Timeout returns the provider request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.ProvidersFile = ExpandHome(cfg.ProvidersFile)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./oembed.yaml",
		"./oembed.yml",
		filepath.Join(home, ".config", "oembed", "config.yaml"),
		filepath.Join(home, ".config", "oembed", "config.yml"),
		filepath.Join(home, ".oembed.yaml"),
		filepath.Join(home, ".oembed.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "oembed", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "oembed", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ProvidersFile != "" && (c.ProvidersURL != "" || c.FetchLatest) {
		return fmt.Errorf("providers_file cannot be combined with providers_url or fetch_latest")
	}
	if c.ProvidersURL != "" && c.FetchLatest {
		return fmt.Errorf("providers_url and fetch_latest are mutually exclusive")
	}
	if c.ProvidersURL != "" && !strings.HasPrefix(c.ProvidersURL, "http://") && !strings.HasPrefix(c.ProvidersURL, "https://") {
		return fmt.Errorf("providers_url must start with http:// or https://")
	}

	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 120 {
		return fmt.Errorf("timeout_seconds must be between 1 and 120, got %d", c.TimeoutSeconds)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return fmt.Errorf("max_width and max_height cannot be negative")
	}

	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("unsupported output %q, valid outputs: text, json", c.Output)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("rate_limit_per_minute must be at least 1, got %d", c.RateLimitPerMinute)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate_limit_burst must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.MaxBatchURLs < 1 || c.MaxBatchURLs > 500 {
		return fmt.Errorf("max_batch_urls must be between 1 and 500, got %d", c.MaxBatchURLs)
	}

	return nil
}
