package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// Environment variables checked for the Gemini API key, in order.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// ModelConfig generation service configuration
type ModelConfig struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Temperature      float64 `yaml:"temperature"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	MaxRetries       int     `yaml:"max_retries"`
	RetryBaseDelayMs int     `yaml:"retry_base_delay_ms"`
}

// HistoryConfig recent-query storage configuration
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig web UI configuration
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig logger configuration
type LogConfig struct {
	Level   string `yaml:"level"`
	MaxDays int    `yaml:"max_days"`
	Console bool   `yaml:"console"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Model: ModelConfig{
			APIKey:           "",
			BaseURL:          "",
			Temperature:      0.2,
			TimeoutSeconds:   60,
			MaxRetries:       0,
			RetryBaseDelayMs: 500,
		},
		History: HistoryConfig{
			DBPath: filepath.Join(homeDir, ".gsearch", "history.db"),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Log: LogConfig{
			Level:   "info",
			MaxDays: 7,
			Console: false,
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file, then merges secrets and the environment.
// The key is never written back to config.yaml from the environment.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// config.yaml < .secrets < environment
	if cfg.Model.APIKey == "" {
		secrets, _ := LoadSecrets()
		if apiKey := secrets.GetGeminiAPIKey(); apiKey != "" {
			cfg.Model.APIKey = apiKey
		}
	}
	if apiKey := apiKeyFromEnv(); apiKey != "" {
		cfg.Model.APIKey = apiKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func apiKeyFromEnv() string {
	for _, name := range apiKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# gsearch configuration file\n# The API key may also come from GEMINI_API_KEY or API_KEY.\n\n" + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration. A missing API key is not an error
// here: every search reports it instead.
func (c *Config) Validate() error {
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("config error: model.temperature must be between 0 and 2")
	}
	if c.Model.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: model.timeout_seconds must be greater than 0")
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("config error: model.max_retries cannot be negative")
	}
	if c.Model.RetryBaseDelayMs <= 0 {
		return fmt.Errorf("config error: model.retry_base_delay_ms must be greater than 0")
	}

	if c.History.DBPath == "" {
		return fmt.Errorf("config error: history.db_path cannot be empty")
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("config error: server.addr cannot be empty")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: log.level must be one of debug, info, warn, error")
	}

	return nil
}

// IsAPIKeyConfigured checks if API key is configured
func (c *Config) IsAPIKeyConfigured() bool {
	return c.Model.APIKey != ""
}

// Timeout returns the per-request generation timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first retry backoff delay
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Model.RetryBaseDelayMs) * time.Millisecond
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	baseURL := c.Model.BaseURL
	if baseURL == "" {
		baseURL = "(SDK default)"
	}

	return fmt.Sprintf(`gsearch configuration:
  Model:
    API Key: %s
    Base URL: %s
    Temperature: %.1f
    Timeout Seconds: %d
    Max Retries: %d
    Retry Base Delay: %dms
  History:
    DB Path: %s
  Server:
    Addr: %s
  Log:
    Level: %s
    Max Days: %d
    Console: %v`,
		redactAPIKey(c.Model.APIKey),
		baseURL,
		c.Model.Temperature,
		c.Model.TimeoutSeconds,
		c.Model.MaxRetries,
		c.Model.RetryBaseDelayMs,
		c.History.DBPath,
		c.Server.Addr,
		c.Log.Level,
		c.Log.MaxDays,
		c.Log.Console,
	)
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..." // Only show first 8 chars
	}
	return "***"
}
